package provider

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultCredentialTTL is the expiry applied when SetCredential's caller
// omits one.
const DefaultCredentialTTL = 2 * time.Hour

// credential is a stored secret plus its expiry, never persisted to disk.
type credential struct {
	value     string
	expiresAt time.Time
}

func (c credential) expired(now time.Time) bool {
	return now.After(c.expiresAt)
}

// CredentialStore is the process-memory credential registry: keyed by
// provider name, each credential carries an expiry after which it is
// cleared. It is an RWMutex-guarded map that supports mutation and
// expiry.
type CredentialStore struct {
	mu          sync.RWMutex
	credentials map[string]credential
	onChange    func(providerName string, active bool)

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewCredentialStore constructs an empty store. onChange, if non-nil, is
// invoked whenever a credential is set (active=true) or cleared/expired
// (active=false). The Gateway's own store is built without one; providers
// see credential changes by calling Get.
func NewCredentialStore(onChange func(providerName string, active bool)) *CredentialStore {
	return &CredentialStore{
		credentials: make(map[string]credential),
		onChange:    onChange,
	}
}

// SetCredential stores value for providerName with the given ttl (or
// DefaultCredentialTTL if ttl<=0), re-arming the provider.
func (s *CredentialStore) SetCredential(providerName, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCredentialTTL
	}
	s.mu.Lock()
	s.credentials[providerName] = credential{value: value, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(providerName, true)
	}
}

// ClearCredential removes providerName's credential, disabling it.
func (s *CredentialStore) ClearCredential(providerName string) {
	s.mu.Lock()
	_, existed := s.credentials[providerName]
	delete(s.credentials, providerName)
	s.mu.Unlock()

	if existed && s.onChange != nil {
		s.onChange(providerName, false)
	}
}

// Get returns the live credential value for providerName, or ("", false)
// if absent or expired. An expired credential is lazily cleared.
func (s *CredentialStore) Get(providerName string) (string, bool) {
	now := time.Now()

	s.mu.RLock()
	cred, ok := s.credentials[providerName]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if cred.expired(now) {
		s.ClearCredential(providerName)
		return "", false
	}
	return cred.value, true
}

// ExpireNow forces immediate expiry sweeping, used by the background loop
// and directly by tests that don't want to wait on a real clock.
func (s *CredentialStore) ExpireNow() {
	now := time.Now()

	s.mu.Lock()
	var expired []string
	for name, cred := range s.credentials {
		if cred.expired(now) {
			expired = append(expired, name)
			delete(s.credentials, name)
		}
	}
	s.mu.Unlock()

	for _, name := range expired {
		if s.onChange != nil {
			s.onChange(name, false)
		}
	}
}

// StartExpirySweep launches a background goroutine that calls ExpireNow on
// interval, in the same Start/Stop+done-channel shape as an established
// cleanup service. Safe to call at most once.
func (s *CredentialStore) StartExpirySweep(interval time.Duration) {
	s.mu.Lock()
	if s.stopCh != nil {
		s.mu.Unlock()
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.ExpireNow()
			}
		}
	}()
}

// Stop ends the background expiry sweep, if running.
func (s *CredentialStore) Stop() {
	s.mu.Lock()
	stopCh := s.stopCh
	s.mu.Unlock()
	if stopCh == nil {
		return
	}
	select {
	case <-stopCh:
	default:
		close(stopCh)
	}
	<-s.doneCh
	slog.Info("credential store expiry sweep stopped")
}
