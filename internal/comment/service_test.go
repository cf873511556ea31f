package comment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/mail"
	"TaskFlow/internal/notification"
	"TaskFlow/internal/project"
	"TaskFlow/internal/store"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type mockComments struct{ mock.Mock }

func (m *mockComments) Create(ctx context.Context, c *Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockComments) FindByID(ctx context.Context, id primitive.ObjectID) (*Comment, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*Comment)
	return c, args.Error(1)
}

func (m *mockComments) Replace(ctx context.Context, c *Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockComments) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockComments) List(ctx context.Context, f Filter) ([]*Comment, error) {
	args := m.Called(ctx, f)
	out, _ := args.Get(0).([]*Comment)
	return out, args.Error(1)
}

type mockTasks struct{ mock.Mock }

func (m *mockTasks) FindByID(ctx context.Context, id primitive.ObjectID) (*project.Task, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*project.Task)
	return t, args.Error(1)
}

type mockProjects struct{ mock.Mock }

func (m *mockProjects) FindByID(ctx context.Context, id primitive.ObjectID) (*project.Project, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*project.Project)
	return p, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, n notification.Notice) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockNotifier) Forget(ctx context.Context, refType string, ids ...primitive.ObjectID) {
	m.Called(ctx, refType, ids)
}

type fixture struct {
	comments *mockComments
	tasks    *mockTasks
	projects *mockProjects
	notifier *mockNotifier
	svc      *CommentService
}

func newFixture() *fixture {
	f := &fixture{
		comments: new(mockComments),
		tasks:    new(mockTasks),
		projects: new(mockProjects),
		notifier: new(mockNotifier),
	}
	f.svc = newCommentService(f.comments, f.tasks, f.projects, f.notifier, zap.NewNop())
	f.svc.now = func() time.Time { return now }
	return f
}

func claimsFor(id primitive.ObjectID, role string) *auth.JWTClaims {
	c := &auth.JWTClaims{Name: "Linus", Role: role}
	c.Subject = id.Hex()
	return c
}

func kindIs(kind string, recipients ...primitive.ObjectID) interface{} {
	return mock.MatchedBy(func(n notification.Notice) bool {
		return n.Kind == kind && assert.ObjectsAreEqual(recipients, n.Recipients)
	})
}

func TestCreateComment_TaskFanOut(t *testing.T) {
	f := newFixture()
	author, creator, assignee, manager, mentioned := primitive.NewObjectID(), primitive.NewObjectID(),
		primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	task := &project.Task{
		ID:        primitive.NewObjectID(),
		Title:     "Fix login",
		Project:   primitive.NewObjectID(),
		CreatedBy: creator,
		Assignees: []primitive.ObjectID{assignee, author},
	}
	f.tasks.On("FindByID", mock.Anything, task.ID).Return(task, nil)
	f.projects.On("FindByID", mock.Anything, task.Project).Return(&project.Project{ID: task.Project, Manager: &manager}, nil)
	f.comments.On("Create", mock.Anything, mock.AnythingOfType("*comment.Comment")).Return(nil)
	f.notifier.On("Notify", mock.Anything, kindIs(notification.KindComment, creator, assignee, manager)).Return(nil).Once()
	f.notifier.On("Notify", mock.Anything, kindIs(notification.KindMention, mentioned)).Return(nil).Once()

	c, err := f.svc.CreateComment(context.Background(), claimsFor(author, auth.RoleMember), CreateCommentRequest{
		Content:  "  looks good  ",
		Task:     task.ID.Hex(),
		Mentions: []string{mentioned.Hex(), author.Hex()},
	})
	require.NoError(t, err)
	assert.Equal(t, "looks good", c.Content)
	assert.Equal(t, &task.ID, c.Task)
	assert.Nil(t, c.Project)
	f.notifier.AssertExpectations(t)
}

func TestCreateComment_ProjectFanOutMentionedFollowerGetsMentionOnly(t *testing.T) {
	f := newFixture()
	author, manager, member := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	p := &project.Project{ID: primitive.NewObjectID(), Name: "Apollo", Manager: &manager, Members: []primitive.ObjectID{member}}
	f.projects.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.comments.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, kindIs(notification.KindComment, manager)).Return(nil).Once()
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n notification.Notice) bool {
		data, ok := n.Email.Data.(mail.CommentData)
		return n.Kind == notification.KindMention &&
			assert.ObjectsAreEqual([]primitive.ObjectID{member}, n.Recipients) &&
			n.Ref.Type == notification.RefProject &&
			ok && data.Mentioned && data.Path == "/projects/"+p.ID.Hex()
	})).Return(nil).Once()

	_, err := f.svc.CreateComment(context.Background(), claimsFor(author, auth.RoleMember), CreateCommentRequest{
		Content:  "ping",
		Project:  p.ID.Hex(),
		Mentions: []string{member.Hex()},
	})
	require.NoError(t, err)
	f.notifier.AssertExpectations(t)
}

func TestCreateComment_NotifyFailureDoesNotFail(t *testing.T) {
	f := newFixture()
	manager := primitive.NewObjectID()
	p := &project.Project{ID: primitive.NewObjectID(), Name: "Apollo", Manager: &manager}
	f.projects.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.comments.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := f.svc.CreateComment(context.Background(), claimsFor(primitive.NewObjectID(), auth.RoleMember), CreateCommentRequest{
		Content: "hello", Project: p.ID.Hex(),
	})
	assert.NoError(t, err)
}

func TestCreateComment_Target(t *testing.T) {
	f := newFixture()
	actor := claimsFor(primitive.NewObjectID(), auth.RoleMember)

	_, err := f.svc.CreateComment(context.Background(), actor, CreateCommentRequest{Content: "x"})
	assert.ErrorIs(t, err, ErrTarget)

	_, err = f.svc.CreateComment(context.Background(), actor, CreateCommentRequest{
		Content: "x", Task: primitive.NewObjectID().Hex(), Project: primitive.NewObjectID().Hex(),
	})
	assert.ErrorIs(t, err, ErrTarget)

	missing := primitive.NewObjectID()
	f.tasks.On("FindByID", mock.Anything, missing).Return(nil, store.ErrNotFound)
	_, err = f.svc.CreateComment(context.Background(), actor, CreateCommentRequest{Content: "x", Task: missing.Hex()})
	assert.ErrorIs(t, err, ErrTaskMissing)
	f.comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateComment(t *testing.T) {
	author := primitive.NewObjectID()
	id := primitive.NewObjectID()

	t.Run("author edits", func(t *testing.T) {
		f := newFixture()
		f.comments.On("FindByID", mock.Anything, id).Return(&Comment{ID: id, Author: author, Content: "old"}, nil)
		f.comments.On("Replace", mock.Anything, mock.Anything).Return(nil)

		c, err := f.svc.UpdateComment(context.Background(), claimsFor(author, auth.RoleMember), id, UpdateCommentRequest{Content: "new"})
		require.NoError(t, err)
		assert.Equal(t, "new", c.Content)
		assert.True(t, c.Edited)
		assert.Equal(t, now, c.UpdatedAt)
	})

	t.Run("admin cannot edit someone else's comment", func(t *testing.T) {
		f := newFixture()
		f.comments.On("FindByID", mock.Anything, id).Return(&Comment{ID: id, Author: author}, nil)

		_, err := f.svc.UpdateComment(context.Background(), claimsFor(primitive.NewObjectID(), auth.RoleAdmin), id, UpdateCommentRequest{Content: "new"})
		assert.ErrorIs(t, err, ErrNotAuthor)
		f.comments.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
	})
}

func TestDeleteComment(t *testing.T) {
	author := primitive.NewObjectID()
	id := primitive.NewObjectID()

	tests := []struct {
		name    string
		actor   *auth.JWTClaims
		wantErr error
	}{
		{name: "author", actor: claimsFor(author, auth.RoleMember)},
		{name: "manager", actor: claimsFor(primitive.NewObjectID(), auth.RoleManager)},
		{name: "admin", actor: claimsFor(primitive.NewObjectID(), auth.RoleAdmin)},
		{name: "other member", actor: claimsFor(primitive.NewObjectID(), auth.RoleMember), wantErr: ErrCannotDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.comments.On("FindByID", mock.Anything, id).Return(&Comment{ID: id, Author: author}, nil)
			f.comments.On("Delete", mock.Anything, id).Return(nil)

			err := f.svc.DeleteComment(context.Background(), tt.actor, id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.comments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestListComments_RequiresOneTarget(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ListComments(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrTarget)

	task := primitive.NewObjectID()
	f.comments.On("List", mock.Anything, Filter{Task: task}).Return([]*Comment{{ID: primitive.NewObjectID()}}, nil)
	out, err := f.svc.ListComments(context.Background(), Filter{Task: task})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
