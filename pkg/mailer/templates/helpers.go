package templates

import "strings"

// Option pattern
type Option func(*EmailData)

func WithRecipe(author, name, url string) Option {
	return func(d *EmailData) {
		d.AuthorName = author
		d.RecipeName = name
		d.RecipeURL = url
	}
}

func WithItems(items []Item) Option {
	return func(d *EmailData) { d.Items = items }
}

// NewBaseEmailData fills the common fields then applies the options.
func NewBaseEmailData(appName, siteURL, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:    strings.TrimSpace(name),
		Email:   email,
		AppName: appName,
		SiteURL: strings.TrimRight(siteURL, "/"),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
