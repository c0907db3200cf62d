// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package instance

import (
	"sync"

	"github.com/polyd/polyd/internal/kvstore"
	"github.com/polyd/polyd/internal/log"
	"github.com/polyd/polyd/internal/metrics"
	"github.com/polyd/polyd/internal/wire"
)

// SRConfig is the segment-routing configuration snapshot handed to every
// instance at construction; instances never mutate it, they see a new
// snapshot on the next (re)construction following a configuration change.
type SRConfig struct {
	Enabled     bool
	SRGBLower   uint32
	SRGBUpper   uint32
}

// BIERConfig is the BIER configuration snapshot, same immutability
// contract as SRConfig.
type BIERConfig struct {
	Enabled    bool
	SubDomains []uint8
}

// EventRecorderConfig controls whether an instance records its FSM
// transitions and packet trace to the debug log at Trace level.
type EventRecorderConfig struct {
	Enabled bool
}

// KeychainRegistry resolves a named keychain (referenced by interface or
// neighbor configuration) to the wire.Keychain used for authentication.
type KeychainRegistry struct {
	mu        sync.RWMutex
	keychains map[string]wire.Keychain
}

// NewKeychainRegistry returns an empty registry.
func NewKeychainRegistry() *KeychainRegistry {
	return &KeychainRegistry{keychains: make(map[string]wire.Keychain)}
}

// Set installs or replaces the keychain under name.
func (r *KeychainRegistry) Set(name string, kc wire.Keychain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keychains[name] = kc
}

// Lookup returns the keychain registered under name.
func (r *KeychainRegistry) Lookup(name string) (wire.Keychain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kc, ok := r.keychains[name]
	return kc, ok
}

// HostnameCache maps a peer's advertised system identifier (IS-IS
// system-id, OSPF router-id, LDP LSR-id — all rendered as strings by the
// caller) to its dynamic hostname, shared across every instance so a
// hostname learned by one protocol is visible when rendering another's
// state output.
type HostnameCache struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewHostnameCache returns an empty cache.
func NewHostnameCache() *HostnameCache {
	return &HostnameCache{names: make(map[string]string)}
}

// Set records hostname for id, overwriting any previous value.
func (c *HostnameCache) Set(id, hostname string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[id] = hostname
}

// Get returns the cached hostname for id, if any.
func (c *HostnameCache) Get(id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[id]
	return name, ok
}

// Shared is the bundle of data given to every protocol instance at
// construction, per §4.2: a non-volatile store handle, a keychain
// registry, SR/BIER snapshots, a hostname cache, and the event-recorder
// configuration. None of it is instance-owned, so instances never close
// or mutate it directly (HostnameCache and KeychainRegistry have their
// own internal locking for the handful of cross-instance writes they
// need).
type Shared struct {
	Store         kvstore.Store
	Keychains     *KeychainRegistry
	SR            SRConfig
	BIER          BIERConfig
	Hostnames     *HostnameCache
	EventRecorder EventRecorderConfig
	Log           log.Logger
	Metrics       *metrics.LinkState
}
