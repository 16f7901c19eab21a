// Package session mirrors WooCommerce customer sessions so the storefront
// can hand a cart over between the headless frontend and the shop.
package session

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	modelSession "WooWithTypesense/internal/database/model/session"
	"WooWithTypesense/pkg/logging"
)

const (
	CustomerSessionCookie = "woocommerce_customer_session_id"
	SessionIDQuery        = "session_id"
	GuestCookiePrefix     = "guest_session_"
)

// CartKeys are the session entries carried between guest and account sessions.
var CartKeys = []string{"cart", "applied_coupons", "coupon_discount_totals", "coupon_discount_tax_totals"}

// Data is a session keyed like WC()->session; values are raw JSON.
type Data map[string]json.RawMessage

// CustomerID reads data["customer"].id, 0 for guests.
func (d Data) CustomerID() int {
	raw, ok := d["customer"]
	if !ok {
		return 0
	}
	var customer struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(raw, &customer); err != nil {
		return 0
	}
	id, _ := customer.ID.Int64()
	return int(id)
}

type Store struct {
	db           *sqlx.DB
	expiry       time.Duration
	cookieDomain string
	now          func() time.Time
}

func NewStore(db *sqlx.DB, expiry time.Duration, cookieDomain string) *Store {
	if expiry <= 0 {
		expiry = 48 * time.Hour
	}
	return &Store{db: db, expiry: expiry, cookieDomain: cookieDomain, now: time.Now}
}

// Get returns nil, nil for unknown and expired sessions.
func (s *Store) Get(key string) (Data, error) {
	row, err := modelSession.SelectByKey(s.db, key)
	if err != nil {
		return nil, err
	}
	if row == nil || row.Expiry < s.now().Unix() {
		return nil, nil
	}
	data := Data{}
	if err := json.Unmarshal([]byte(row.Value), &data); err != nil {
		return nil, errors.Wrapf(err, "failed to decode session %s", key)
	}
	return data, nil
}

// Save stores data under key and extends its expiry.
func (s *Store) Save(key string, data Data) error {
	if key == "" {
		return errors.New("session key is empty")
	}
	if data == nil {
		data = Data{}
	}
	value, err := json.Marshal(data)
	if err != nil {
		return errors.Wrapf(err, "failed to encode session %s", key)
	}
	row := &modelSession.Session{
		SessionKey: key,
		CustomerID: data.CustomerID(),
		Value:      string(value),
		Expiry:     s.now().Add(s.expiry).Unix(),
	}
	return row.Upsert(s.db)
}

func (s *Store) Delete(key string) error {
	return modelSession.DeleteByKey(s.db, key)
}

// Cleanup removes expired sessions.
func (s *Store) Cleanup() (int64, error) {
	n, err := modelSession.DeleteExpired(s.db, s.now().Unix())
	if err != nil {
		return 0, err
	}
	logging.GetLogger().Debugf("expired sessions removed: %d", n)
	return n, nil
}

// SessionCookie appends the cookie domain to a Set-Cookie value.
func (s *Store) SessionCookie(value string) string {
	if s.cookieDomain == "" {
		return value
	}
	return value + "; domain=" + s.cookieDomain
}

// Request is the part of an incoming shop request the session hand-over reads.
type Request struct {
	// UserID of the logged-in user, 0 for guests.
	UserID int
	// CurrentKey is the session being loaded into; a new key is generated when empty.
	CurrentKey string
	Cookies    map[string]string
	Query      url.Values
}

// Result is the loaded session plus the cookies to send back.
type Result struct {
	SessionKey string
	Data       Data
	Cookies    []*http.Cookie
}

func (s *Store) cookie(name, value string) *http.Cookie {
	return &http.Cookie{Name: name, Value: value, Path: "/", Domain: s.cookieDomain}
}

func (s *Store) deleteCookie(name string) *http.Cookie {
	c := s.cookie(name, "")
	c.MaxAge = -1
	return c
}

// sessionID is the customer session cookie, else the session_id query parameter.
func (r *Request) sessionID() string {
	if id := r.Cookies[CustomerSessionCookie]; id != "" {
		return id
	}
	return r.Query.Get(SessionIDQuery)
}

// LoadCartFromSession copies a stored customer session into the current one.
// A logged-in user first absorbs guest_session_* cookies; the account cart wins
// on key clashes. Loading a guest session re-issues those cookies.
func (s *Store) LoadCartFromSession(req Request) (*Result, error) {
	logger := logging.GetLogger()
	logger.Debug("Start LoadCartFromSession")
	defer logger.Debug("End LoadCartFromSession")

	key := req.CurrentKey
	if key == "" {
		key = uuid.NewString()
	}
	current, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if current == nil {
		current = Data{}
	}
	result := &Result{SessionKey: key, Data: current}

	if req.UserID != 0 {
		for _, k := range CartKeys {
			raw, ok := req.Cookies[GuestCookiePrefix+k]
			if !ok {
				continue
			}
			guest, err := decodeGuestCookie(raw)
			if err != nil {
				logger.Errorf("failed to decode %s%s: %v", GuestCookiePrefix, k, err)
				continue
			}
			if k == "cart" {
				guest = mergeCart(guest, current["cart"])
			}
			current[k] = guest
			result.Cookies = append(result.Cookies, s.deleteCookie(GuestCookiePrefix+k))
		}
	}

	id := req.sessionID()
	if id != "" {
		stored, err := s.Get(id)
		switch {
		case err != nil:
			logger.Errorf("failed to load session %s: %v", id, err)
		case stored == nil:
			logger.Errorf("Could not locate WooCommerce session %s", id)
		default:
			isGuest := stored.CustomerID() == 0
			for k, v := range stored {
				current[k] = v
				if isGuest && isCartKey(k) {
					result.Cookies = append(result.Cookies, s.cookie(GuestCookiePrefix+k, url.QueryEscape(string(v))))
				}
			}
		}
	}

	if err := s.Save(key, current); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadUserFromSession returns the customer to authenticate from the session
// cookie. It is 0 when the request is already logged in or the session
// belongs to a guest.
func (s *Store) LoadUserFromSession(req Request) (int, error) {
	id := req.Cookies[CustomerSessionCookie]
	if id == "" || req.UserID != 0 {
		return 0, nil
	}
	stored, err := s.Get(id)
	if err != nil {
		return 0, err
	}
	if stored == nil {
		logging.GetLogger().Errorf("Could not locate WooCommerce session %s", id)
		return 0, nil
	}
	return stored.CustomerID(), nil
}

func decodeGuestCookie(raw string) (json.RawMessage, error) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed url decode")
	}
	if !json.Valid([]byte(decoded)) {
		return nil, errors.New("cookie value is not JSON")
	}
	return json.RawMessage(decoded), nil
}

// mergeCart overlays the account cart on the guest cart.
func mergeCart(guest, account json.RawMessage) json.RawMessage {
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(guest, &merged); err != nil {
		return guest
	}
	if len(account) > 0 {
		var accountItems map[string]json.RawMessage
		if err := json.Unmarshal(account, &accountItems); err == nil {
			for k, v := range accountItems {
				merged[k] = v
			}
		}
	}
	b, err := json.Marshal(merged)
	if err != nil {
		return guest
	}
	return b
}

func isCartKey(k string) bool {
	for _, c := range CartKeys {
		if c == k {
			return true
		}
	}
	return false
}
