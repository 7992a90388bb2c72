package document

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Input is a publish request. Pointers distinguish absent fields from
// provided ones.
type Input struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	Author     *string `json:"author"`
	FontSize   *string `json:"fontSize"`
	TextColor  *string `json:"textColor"`
	TextFormat *string `json:"textFormat"`
	LineHeight *string `json:"lineHeight"`
	Theme      *string `json:"theme"`
	CustomURL  *string `json:"custom_url"`
}

// Validate checks required fields and the vanity slug.
func (in Input) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Content, validation.Required),
	)
	if err != nil {
		return Errorf(ErrInvalidInput, "Missing required fields: title, content")
	}
	if !ValidateCustomURL(in.CustomURL) {
		return Errorf(ErrInvalidInput, "Invalid URL format: use %d-%d letters, digits or hyphens", MinCustomURLLength, MaxCustomURLLength)
	}
	return nil
}

// Build turns a validated input into a record without an id. Absent or empty
// presentation fields get their defaults.
func (in Input) Build(deleteCode string, createdAt time.Time) *Document {
	return &Document{
		DeleteCode: deleteCode,
		Title:      *in.Title,
		Author:     in.Author,
		Content:    *in.Content,
		FontSize:   orDefault(in.FontSize, DefaultFontSize),
		TextColor:  orDefault(in.TextColor, DefaultTextColor),
		TextFormat: orDefault(in.TextFormat, DefaultTextFormat),
		LineHeight: orDefault(in.LineHeight, DefaultLineHeight),
		Theme:      orDefault(in.Theme, DefaultTheme),
		CreatedAt:  createdAt.UTC(),
	}
}

func orDefault(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}
