// Package validator expresses input validation as a list of rules.
//
//	err := validator.Apply(
//		validator.Required("title", in.Title),
//		validator.MaxLen("title", in.Title, 80),
//		validator.When(in.BuyURL != "", validator.ValidURLWithScheme("buy_url", in.BuyURL, "http", "https")),
//	)
//
// Apply evaluates every rule and returns ValidationErrors listing all
// failures, so a form can show every problem at once.
package validator
