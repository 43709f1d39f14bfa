package views

// SiteConfig holds site-wide settings the templates read.
type SiteConfig struct {
	Name            string // WIKIEDIT_NAME (default "Wiki")
	WidgetScriptURL string // markdown editor widget script
	WidgetStyleURL  string // markdown editor widget stylesheet
}

// EditorData is the state of the editor form as rendered.
type EditorData struct {
	Slug    string // page being edited, empty when creating
	Title   string
	Content string
	Private bool
	Dir     string

	User      string
	CSRFToken string
}

// IsNew reports whether the form creates a page rather than editing one.
func (d EditorData) IsNew() bool {
	return d.Slug == ""
}
