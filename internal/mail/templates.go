package mail

import (
	"bytes"
	"embed"
	htmltmpl "html/template"
	"io/fs"
	"path"
	"strings"
	texttmpl "text/template"
	"time"

	"github.com/pkg/errors"

	"TaskFlow/internal/config"
)

//go:embed templates/*
var templateFS embed.FS

const (
	TemplateComment          = "comment"
	TemplateTaskAssigned     = "task_assigned"
	TemplateTaskDigest       = "task_digest"
	TemplateMeetingReminder  = "meeting_reminder"
	TemplateMeetingScheduled = "meeting_scheduled"
	TemplatePasswordReset    = "password_reset"
)

// CommentData feeds the comment template.
type CommentData struct {
	AuthorName  string
	TargetKind  string // task or project
	TargetTitle string
	Content     string
	Mentioned   bool
	Path        string
}

type TaskAssignedData struct {
	TaskTitle   string
	ProjectName string
	AssignedBy  string
	DueDate     string
	Path        string
}

type TaskLine struct {
	Title   string
	Project string
	DueDate string
	Path    string
}

type TaskDigestData struct {
	RecipientName string
	DueSoon       []TaskLine
	Overdue       []TaskLine
}

type MeetingData struct {
	RecipientName string
	Title         string
	Organizer     string
	StartTime     string
	EndTime       string
	Location      string
	Link          string
	Agenda        string
	Path          string
}

type PasswordResetData struct {
	RecipientName string
	ExpiresAt     string
	Path          string
}

const (
	dateLayout = "Mon, Jan 2 2006"
	timeLayout = "Mon, Jan 2 2006 15:04 MST"
)

// FormatDate renders a due date for email bodies.
func FormatDate(t time.Time) string { return t.Format(dateLayout) }

func FormatTime(t time.Time) string { return t.Format(timeLayout) }

type templateContext struct {
	AppName     string
	FrontendURL string
	Data        interface{}
}

// Renderer holds the parsed html and text variants of every template.
type Renderer struct {
	html        map[string]*htmltmpl.Template
	text        map[string]*texttmpl.Template
	frontendURL string
}

func NewRenderer(cfg *config.AppConfig) (*Renderer, error) {
	r := &Renderer{
		html:        map[string]*htmltmpl.Template{},
		text:        map[string]*texttmpl.Template{},
		frontendURL: cfg.FrontendURL,
	}
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, errors.Wrap(err, "read templates")
	}
	for _, entry := range entries {
		fname := entry.Name()
		if strings.HasPrefix(fname, "_") {
			continue
		}
		ext := path.Ext(fname)
		name := strings.TrimSuffix(fname, ext)
		switch ext {
		case ".gohtml":
			t, err := htmltmpl.New(fname).Option("missingkey=error").
				ParseFS(templateFS, "templates/_base.gohtml", "templates/"+fname)
			if err != nil {
				return nil, errors.Wrapf(err, "parse %s", fname)
			}
			r.html[name] = t
		case ".txt":
			t, err := texttmpl.New(fname).Option("missingkey=error").
				ParseFS(templateFS, "templates/_base.txt", "templates/"+fname)
			if err != nil {
				return nil, errors.Wrapf(err, "parse %s", fname)
			}
			r.text[name] = t
		}
	}
	return r, nil
}

// Render executes both variants of name. A template must at least have an
// html variant.
func (r *Renderer) Render(name string, data interface{}) (string, string, error) {
	ht, ok := r.html[name]
	if !ok {
		return "", "", errors.Errorf("unknown email template %q", name)
	}
	ctx := templateContext{AppName: "TaskFlow", FrontendURL: r.frontendURL, Data: data}

	var html bytes.Buffer
	if err := ht.ExecuteTemplate(&html, "base", ctx); err != nil {
		return "", "", errors.Wrapf(err, "render %s.gohtml", name)
	}
	var text bytes.Buffer
	if tt, ok := r.text[name]; ok {
		if err := tt.ExecuteTemplate(&text, "base", ctx); err != nil {
			return "", "", errors.Wrapf(err, "render %s.txt", name)
		}
	}
	return html.String(), text.String(), nil
}
