package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/metrics"
	"TaskFlow/internal/store"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateMany(ctx context.Context, ns []*Notification) error {
	return m.Called(ctx, ns).Error(0)
}

func (m *mockStore) List(ctx context.Context, recipient primitive.ObjectID, unread *bool, lo store.ListOptions) (*store.Page[Notification], error) {
	args := m.Called(ctx, recipient, unread, lo)
	page, _ := args.Get(0).(*store.Page[Notification])
	return page, args.Error(1)
}

func (m *mockStore) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, recipient)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) MarkRead(ctx context.Context, recipient, id primitive.ObjectID, at time.Time) error {
	return m.Called(ctx, recipient, id, at).Error(0)
}

func (m *mockStore) MarkAllRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error) {
	args := m.Called(ctx, recipient, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, recipient, id primitive.ObjectID) error {
	return m.Called(ctx, recipient, id).Error(0)
}

func (m *mockStore) DeleteForRef(ctx context.Context, refType string, ids []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, refType, ids)
	return args.Get(0).(int64), args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*auth.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]*auth.User)
	return users, args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, to []string, subject, template string, data interface{}) error {
	return m.Called(ctx, to, subject, template, data).Error(0)
}

var testNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestService(repo notificationStore, users userLookup, m mailer) (*NotificationService, *metrics.Metrics) {
	mt := metrics.New()
	svc := newNotificationService(repo, users, m, mt, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc, mt
}

func TestNotify_DedupesAndExcludes(t *testing.T) {
	author := primitive.NewObjectID()
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	taskID := primitive.NewObjectID()

	repo := new(mockStore)
	repo.On("CreateMany", mock.Anything, mock.MatchedBy(func(ns []*Notification) bool {
		if len(ns) != 2 {
			return false
		}
		for _, n := range ns {
			if n.Kind != KindComment || n.RefType != RefTask || n.RefID == nil || *n.RefID != taskID || n.Read {
				return false
			}
		}
		return ns[0].Recipient == a && ns[1].Recipient == b
	})).Return(nil)

	svc, mt := newTestService(repo, new(mockUsers), new(mockMailer))
	err := svc.Notify(context.Background(), Notice{
		Recipients: []primitive.ObjectID{a, author, b, a, primitive.NilObjectID},
		Exclude:    []primitive.ObjectID{author},
		Kind:       KindComment,
		Message:    "Ada commented on Fix login",
		Ref:        Ref{Type: RefTask, ID: taskID},
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
	assert.Equal(t, 2.0, testutil.ToFloat64(mt.NotificationsTotal.WithLabelValues(KindComment)))
}

func TestNotify_NoRecipients(t *testing.T) {
	repo := new(mockStore)
	svc, _ := newTestService(repo, new(mockUsers), new(mockMailer))
	me := primitive.NewObjectID()

	err := svc.Notify(context.Background(), Notice{Recipients: []primitive.ObjectID{me}, Exclude: []primitive.ObjectID{me}, Kind: KindMention})
	require.NoError(t, err)
	repo.AssertNotCalled(t, "CreateMany", mock.Anything, mock.Anything)
}

func TestNotify_EmailFailureIsSwallowed(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	repo := new(mockStore)
	repo.On("CreateMany", mock.Anything, mock.Anything).Return(nil)
	users := new(mockUsers)
	users.On("FindByIDs", mock.Anything, []primitive.ObjectID{a, b}).Return([]*auth.User{
		{ID: a, Email: "a@example.com"},
		{ID: b},
	}, nil)
	m := new(mockMailer)
	m.On("Send", mock.Anything, []string{"a@example.com"}, "New comment", "comment", "payload").
		Return(errors.New("smtp down"))

	svc, _ := newTestService(repo, users, m)
	err := svc.Notify(context.Background(), Notice{
		Recipients: []primitive.ObjectID{a, b},
		Kind:       KindComment,
		Email:      &Email{Subject: "New comment", Template: "comment", Data: "payload"},
	})
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestNotify_StoreError(t *testing.T) {
	repo := new(mockStore)
	repo.On("CreateMany", mock.Anything, mock.Anything).Return(errors.New("boom"))
	m := new(mockMailer)

	svc, _ := newTestService(repo, new(mockUsers), m)
	err := svc.Notify(context.Background(), Notice{
		Recipients: []primitive.ObjectID{primitive.NewObjectID()},
		Kind:       KindTaskDue,
		Email:      &Email{Template: "task_digest"},
	})
	assert.EqualError(t, err, "boom")
	m.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func newHandlerContext(method, target string, claims *auth.JWTClaims) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, target, nil), rec)
	c.Set(auth.ContextKey, claims)
	return c, rec
}

func TestHandler_MarkReadOtherUsersNotification(t *testing.T) {
	me := primitive.NewObjectID()
	id := primitive.NewObjectID()
	repo := new(mockStore)
	repo.On("MarkRead", mock.Anything, me, id, testNow).Return(store.ErrNotFound)

	svc, _ := newTestService(repo, new(mockUsers), new(mockMailer))
	h := NewNotificationHandler(svc)

	claims := &auth.JWTClaims{}
	claims.Subject = me.Hex()
	c, _ := newHandlerContext(http.MethodPatch, "/api/notifications/"+id.Hex()+"/read", claims)
	c.SetParamNames("id")
	c.SetParamValues(id.Hex())

	assert.ErrorIs(t, h.MarkRead(c), store.ErrNotFound)
}

func TestHandler_UnreadCount(t *testing.T) {
	me := primitive.NewObjectID()
	repo := new(mockStore)
	repo.On("CountUnread", mock.Anything, me).Return(int64(4), nil)

	svc, _ := newTestService(repo, new(mockUsers), new(mockMailer))
	h := NewNotificationHandler(svc)

	claims := &auth.JWTClaims{}
	claims.Subject = me.Hex()
	c, rec := newHandlerContext(http.MethodGet, "/api/notifications/unread-count", claims)

	require.NoError(t, h.UnreadCount(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":4}`, rec.Body.String())
}

func TestHandler_ListUnreadFilter(t *testing.T) {
	me := primitive.NewObjectID()
	repo := new(mockStore)
	repo.On("List", mock.Anything, me, mock.MatchedBy(func(unread *bool) bool {
		return unread != nil && *unread
	}), mock.Anything).Return(&store.Page[Notification]{Data: []*Notification{}, Page: 1, Limit: 20}, nil)

	svc, _ := newTestService(repo, new(mockUsers), new(mockMailer))
	h := NewNotificationHandler(svc)

	claims := &auth.JWTClaims{}
	claims.Subject = me.Hex()
	c, rec := newHandlerContext(http.MethodGet, "/api/notifications?unread=true", claims)

	require.NoError(t, h.List(c))
	assert.JSONEq(t, `{"data":[],"total":0,"page":1,"limit":20}`, rec.Body.String())
	repo.AssertExpectations(t)
}
