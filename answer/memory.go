// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package answer

import (
	"sync"

	"github.com/poiesic/ragserve/ai"
)

// Memory holds per-session conversation history. A session is created
// on first append. Reads must observe every append that completed
// before them within the same session.
type Memory interface {
	// Append adds a message to the session's history.
	Append(sessionID string, msg ai.Message)

	// Get returns the session's messages in append order. Unknown
	// sessions yield an empty history.
	Get(sessionID string) []ai.Message

	// Clear removes the session and its history.
	Clear(sessionID string)

	// ClearAll removes every session.
	ClearAll()
}

// SessionMemory is an in-process Memory backed by a mutex-guarded map.
// History grows without bound for the life of the process; callers
// needing eviction wrap it or call Clear.
type SessionMemory struct {
	mu       sync.RWMutex
	sessions map[string][]ai.Message
}

var _ Memory = (*SessionMemory)(nil)

// NewSessionMemory creates an empty in-process session store.
func NewSessionMemory() *SessionMemory {
	return &SessionMemory{sessions: make(map[string][]ai.Message)}
}

// Append adds a message to the session, creating the session if needed.
func (m *SessionMemory) Append(sessionID string, msg ai.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], msg)
}

// Get returns a copy of the session's messages in append order.
func (m *SessionMemory) Get(sessionID string) []ai.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := m.sessions[sessionID]
	out := make([]ai.Message, len(history))
	copy(out, history)
	return out
}

// Clear removes the session.
func (m *SessionMemory) Clear(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// ClearAll removes every session.
func (m *SessionMemory) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string][]ai.Message)
}
