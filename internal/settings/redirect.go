package settings

import "strings"

const (
	RedirectNone   = "none"
	RedirectHome   = "redirect"
	RedirectLogout = "logout"
)

// PageContext describes a shop page request as the storefront edge sees it.
type PageContext struct {
	IsAdmin           bool   `json:"is_admin"`
	IsAjax            bool   `json:"is_ajax"`
	IsLoggedIn        bool   `json:"is_logged_in"`
	IsCart            bool   `json:"is_cart"`
	IsHome            bool   `json:"is_home"`
	IsFrontPage       bool   `json:"is_front_page"`
	IsShop            bool   `json:"is_shop"`
	IsProductCategory bool   `json:"is_product_category"`
	IsProduct         bool   `json:"is_product"`
	RequestURI        string `json:"request_uri"`
	// LoggedInCookie is the storefront's isLoggedIn cookie, "" when absent.
	LoggedInCookie string `json:"is_logged_in_cookie"`
}

type Decision struct {
	Action   string `json:"action"`
	Location string `json:"location,omitempty"`
}

// HomeURL joins path onto the home url.
func (s *Settings) HomeURL(path string) string {
	home := strings.TrimRight(s.homeURL, "/")
	if path == "" {
		return home
	}
	return home + "/" + strings.TrimLeft(path, "/")
}

// Decide maps a page request onto a redirect for non-admin visitors.
func (s *Settings) Decide(page PageContext, enabled bool) Decision {
	if page.IsAdmin || page.IsAjax || !enabled {
		return Decision{Action: RedirectNone}
	}
	if page.IsCart {
		return Decision{Action: RedirectHome, Location: s.HomeURL("")}
	}
	if page.IsHome || page.IsFrontPage || page.IsShop || page.IsProductCategory || page.IsProduct {
		return Decision{Action: RedirectHome, Location: s.HomeURL(page.RequestURI)}
	}
	if page.LoggedInCookie == "false" && page.IsLoggedIn {
		return Decision{Action: RedirectLogout, Location: s.HomeURL(page.RequestURI)}
	}
	return Decision{Action: RedirectNone}
}

// RedirectDecision is Decide with the stored enable_redirect option.
func (s *Settings) RedirectDecision(page PageContext) (Decision, error) {
	general, err := s.General()
	if err != nil {
		return Decision{Action: RedirectNone}, err
	}
	return s.Decide(page, general.EnableRedirect), nil
}
