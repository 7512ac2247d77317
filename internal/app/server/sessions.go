package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/page"
)

const sessionCookie = "domainadmin_session"

// sessionStore keeps one page controller per browser. Idle sessions expire
// after the TTL and are unmounted from the list store.
type sessionStore struct {
	ttl     time.Duration
	newPage func() *page.Controller

	mu    sync.Mutex
	cache *gocache.Cache
}

func newSessionStore(ttl time.Duration, newPage func() *page.Controller) *sessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}

	c := gocache.New(ttl, cleanup)
	c.OnEvicted(func(id string, value interface{}) {
		if ctrl, ok := value.(*page.Controller); ok {
			ctrl.Unmount()
		}
		log.Debug("session expired", "session", id)
	})

	return &sessionStore{ttl: ttl, newPage: newPage, cache: c}
}

// controller returns the session of the request, starting a new one (and
// setting its cookie) when the cookie is missing or expired.
func (s *sessionStore) controller(w http.ResponseWriter, r *http.Request) *page.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if value, ok := s.cache.Get(cookie.Value); ok {
			ctrl := value.(*page.Controller)
			s.cache.SetDefault(cookie.Value, ctrl)
			s.setCookie(w, cookie.Value)
			return ctrl
		}
	}

	id := uuid.NewString()
	ctrl := s.newPage()
	s.cache.SetDefault(id, ctrl)
	s.setCookie(w, id)

	log.Debug("session started", "session", id)
	return ctrl
}

// setCookie (re)issues the session cookie so its lifetime follows the
// sliding server-side TTL.
func (s *sessionStore) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl / time.Second),
	})
}

// close unmounts every live session.
func (s *sessionStore) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.cache.Items() {
		s.cache.Delete(id)
	}
}
