// Package links builds the hypermedia links attached to recipe responses.
package links

import (
	"fmt"
	"net/url"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// Relation names used in paginated responses.
const (
	RelCurrent  = "current"
	RelFirst    = "first"
	RelLast     = "last"
	RelNext     = "next"
	RelPrevious = "previous"

	RelSelf   = "self"
	RelUpdate = "update"
	RelDelete = "delete"
)

// Page returns the navigation links for the page starting at skip. baseURL
// has any query string and fragment removed before use.
func Page(baseURL string, skip, limit int, total int64) model.Links {
	base := stripQuery(baseURL)
	href := func(s int) model.Link {
		return model.Link{Href: fmt.Sprintf("%s?skip=%d&limit=%d", base, s, limit)}
	}

	out := model.Links{
		RelCurrent: href(skip),
		RelFirst:   href(0),
		RelLast:    href(LastSkip(limit, total)),
	}
	if int64(skip)+int64(limit) < total {
		out[RelNext] = href(skip + limit)
	}
	if skip > 0 {
		out[RelPrevious] = href(max(skip-limit, 0))
	}
	return out
}

// LastSkip is the skip of the final page. It is 0 for an empty collection
// or a non-positive limit.
func LastSkip(limit int, total int64) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total-1)/int64(limit)) * limit
}

// Recipe returns the self, update and delete links of one recipe.
func Recipe(id int64) model.Links {
	href := fmt.Sprintf("/recipes/id/%d", id)
	return model.Links{
		RelSelf:   {Href: href},
		RelUpdate: {Href: href, Method: "PUT"},
		RelDelete: {Href: href, Method: "DELETE"},
	}
}

func stripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	return u.String()
}
