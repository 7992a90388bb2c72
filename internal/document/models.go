package document

import "time"

// Presentation defaults substituted when a publish request omits a field.
const (
	DefaultFontSize   = "16px"
	DefaultTextColor  = "#000000"
	DefaultTextFormat = "plain"
	DefaultLineHeight = "1.5"
	DefaultTheme      = "light"
)

// Document is the persisted record. DeleteCode and Custom never leave the
// service; reads go through View.
type Document struct {
	ID         string    `json:"id" bson:"id"`
	DeleteCode string    `json:"-" bson:"delete_code"`
	Custom     bool      `json:"-" bson:"custom"`
	Title      string    `json:"title" bson:"title"`
	Author     *string   `json:"author" bson:"author"`
	Content    string    `json:"content" bson:"content"`
	FontSize   string    `json:"fontSize" bson:"font_size"`
	TextColor  string    `json:"textColor" bson:"text_color"`
	TextFormat string    `json:"textFormat" bson:"text_format"`
	LineHeight string    `json:"lineHeight" bson:"line_height"`
	Theme      string    `json:"theme" bson:"theme"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// View is the public shape of a document returned by fetch.
type View struct {
	Title      string  `json:"title"`
	Author     *string `json:"author"`
	Content    string  `json:"content"`
	FontSize   string  `json:"fontSize"`
	TextColor  string  `json:"textColor"`
	TextFormat string  `json:"textFormat"`
	LineHeight string  `json:"lineHeight"`
	Theme      string  `json:"theme"`
	CreatedAt  string  `json:"created_at"`
}

// View strips the delete code and renders created_at in UTC.
func (d *Document) View() View {
	return View{
		Title:      d.Title,
		Author:     d.Author,
		Content:    d.Content,
		FontSize:   d.FontSize,
		TextColor:  d.TextColor,
		TextFormat: d.TextFormat,
		LineHeight: d.LineHeight,
		Theme:      d.Theme,
		CreatedAt:  d.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Created is what a successful publish discloses, once.
type Created struct {
	ID         string `json:"id"`
	DeleteCode string `json:"delete_code"`
}

// Availability is the answer to a vanity slug probe.
type Availability struct {
	Available bool
	Invalid   bool
}
