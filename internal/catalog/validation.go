package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/bookshelf/pkg/sanitizer"
	"github.com/dmitrymomot/bookshelf/pkg/validator"
)

// titlePattern admits letters, digits, punctuation and spaces.
var titlePattern = regexp.MustCompile(`^[\p{L}\p{N}\p{P}\p{Zs}]+$`)

var (
	cleanLine = sanitizer.Compose(sanitizer.StripHTML, sanitizer.Trim, sanitizer.NormalizeWhitespace)
	cleanText = sanitizer.Compose(sanitizer.StripHTML, sanitizer.Trim)
)

func (in BookInput) sanitize() BookInput {
	in.Title = cleanLine(in.Title)
	in.Author = cleanLine(in.Author)
	in.CoverAttribution = cleanLine(in.CoverAttribution)
	in.Description = cleanText(in.Description)
	in.CoverURL = sanitizer.Trim(in.CoverURL)
	in.BuyURL = sanitizer.Trim(in.BuyURL)
	in.Genre = sanitizer.Trim(in.Genre)
	return in
}

func (in BookInput) validate(now time.Time) error {
	return validator.Apply(
		validator.Required("title", in.Title),
		validator.MaxLen("title", in.Title, MaxTitleLen),
		validator.When(in.Title != "",
			validator.MatchesRegex("title", in.Title, titlePattern, "only letters, digits, punctuation and spaces")),
		validator.MaxLen("author", in.Author, MaxAuthorLen),
		validator.MaxLen("description", in.Description, MaxDescriptionLen),
		validator.MaxLen("cover_attribution", in.CoverAttribution, MaxURLLen),
		validator.When(in.CoverURL != "", validator.ValidURLWithScheme("cover_url", in.CoverURL, "http", "https")),
		validator.MaxLen("cover_url", in.CoverURL, MaxURLLen),
		validator.When(in.BuyURL != "", validator.ValidURLWithScheme("buy_url", in.BuyURL, "http", "https")),
		validator.MaxLen("buy_url", in.BuyURL, MaxURLLen),
		validator.When(in.Year != 0, validator.Between("year", in.Year, 1, now.Year()+1)),
		validator.Required("genre", in.Genre),
	)
}

func sanitizeGenre(name, description string) (string, string) {
	return strings.ToLower(cleanLine(name)), cleanText(description)
}

func validateGenre(name, description string) error {
	return validator.Apply(
		validator.Required("name", name),
		validator.MaxLen("name", name, MaxGenreNameLen),
		validator.MaxLen("description", description, MaxGenreDescriptionLen),
	)
}
