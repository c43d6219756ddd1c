package scrape

import "strings"

var notFoundPhrases = []string{
	"404 not found",
	"page not found",
	"error 404",
	"user not found",
	"profile not found",
	"user does not exist",
	"no user found",
	"no such user",
	"invalid user",
	"the user you are looking for does not exist",
	"this page doesn't exist",
	"could not find that page",
	"couldn't find that page",
}

// IsNotFound reports whether a page body looks like a missing-profile page
func IsNotFound(page string) bool {
	lower := strings.ToLower(page)
	for _, p := range notFoundPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
