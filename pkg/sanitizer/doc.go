// Package sanitizer cleans user input before it is validated and stored:
// whitespace normalisation, length capping, email normalisation and HTML
// stripping (bluemonday).
//
//	clean := sanitizer.Compose(sanitizer.StripHTML, sanitizer.NormalizeWhitespace)
//	desc := clean(form.Description)
package sanitizer
