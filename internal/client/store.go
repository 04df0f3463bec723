// Package client implements the client side of the message synchronization
// protocol: the optimistic per-group timelines and the media upload pipeline.
package client

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/flyasher/fiora/internal/models"
	"github.com/flyasher/fiora/internal/transport"
)

// Channel is the slice of the realtime connection the client needs.
type Channel interface {
	Send(event string, payload any, onResult transport.ResultFunc) error
	On(event string, fn transport.EventHandler)
}

// Store keeps the ordered per-group message timelines the UI renders. Records
// are created optimistically, keyed by a local id, and reconciled in place
// when the server confirms them; a record never moves in its list.
type Store struct {
	channel Channel
	self    models.Sender

	mu     sync.Mutex
	groups map[string][]*models.Message
	seq    int64

	now func() time.Time
}

// NewStore builds a store for the given identity and subscribes it to
// broadcast messages from other group members.
func NewStore(channel Channel, self models.Sender) *Store {
	s := &Store{
		channel: channel,
		self:    self,
		groups:  make(map[string][]*models.Message),
		now:     time.Now,
	}
	if channel != nil {
		channel.On("message", s.handleRemoteMessage)
	}
	return s
}

// Self returns the identity messages are authored as.
func (s *Store) Self() models.Sender { return s.self }

// CreateLocal appends a provisional record to the group's timeline and
// returns its local id. The record is visible immediately, before any network
// round-trip. Image messages start out uploading; everything else pending.
func (s *Store) CreateLocal(groupID string, msgType models.MessageType, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	localID := fmt.Sprintf("%s%d-%d", groupID, s.now().UnixMilli(), s.seq)

	state := models.StatePending
	if msgType == models.TypeImage {
		state = models.StateUploading
	}
	s.groups[groupID] = append(s.groups[groupID], &models.Message{
		LocalID:    localID,
		GroupID:    groupID,
		Type:       msgType,
		Content:    content,
		From:       s.self,
		CreateTime: s.now(),
		State:      state,
	})
	return localID
}

// SendRemote issues the correlated sendMessage call for an existing local
// record and wires its resolution to the record's state transitions. A
// transport failure, including an immediately failed send, marks the record
// failed; it is never removed.
func (s *Store) SendRemote(localID, groupID string, msgType models.MessageType, content string) error {
	req := models.SendMessageRequest{ToGroup: groupID, Type: msgType, Content: content}
	err := s.channel.Send("sendMessage", req, func(data json.RawMessage, err error) {
		if err != nil {
			s.Fail(groupID, localID)
			return
		}
		var payload models.MessagePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			s.Fail(groupID, localID)
			return
		}
		s.confirm(groupID, localID, payload)
	})
	if err != nil {
		s.Fail(groupID, localID)
		return err
	}
	return nil
}

// confirm reconciles the provisional record with the authoritative copy. The
// record is updated in place; its position does not change. Terminal states
// are never overwritten, so a record confirms at most once and a failed
// record stays failed.
func (s *Store) confirm(groupID, localID string, payload models.MessagePayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.find(groupID, localID)
	if msg == nil || msg.State == models.StateConfirmed || msg.State == models.StateFailed {
		return
	}
	msg.ServerID = payload.ID
	msg.Content = payload.Content
	msg.From = payload.From
	if !payload.CreateTime.IsZero() {
		msg.CreateTime = payload.CreateTime
	}
	msg.State = models.StateConfirmed
	msg.Percent = 0
}

// Fail marks a provisional record failed. Failed records remain visible for
// inspection and user-initiated retry under a new local id.
func (s *Store) Fail(groupID, localID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.find(groupID, localID)
	if msg == nil || msg.State == models.StateConfirmed || msg.State == models.StateFailed {
		return
	}
	msg.State = models.StateFailed
}

// SetProgress updates an uploading record's percent in place. Percent is
// clamped to 0-100 and never decreases.
func (s *Store) SetProgress(groupID, localID string, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.find(groupID, localID)
	if msg == nil || msg.State != models.StateUploading {
		return
	}
	if percent > 100 {
		percent = 100
	}
	if percent > msg.Percent {
		msg.Percent = percent
	}
}

// Messages returns a snapshot copy of the group's timeline.
func (s *Store) Messages(groupID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]models.Message, 0, len(s.groups[groupID]))
	for _, msg := range s.groups[groupID] {
		msgs = append(msgs, *msg)
	}
	return msgs
}

// Get returns a copy of one record by local id.
func (s *Store) Get(groupID, localID string) (models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg := s.find(groupID, localID); msg != nil {
		return *msg, true
	}
	return models.Message{}, false
}

// handleRemoteMessage appends a confirmed record for a broadcast from another
// member. No reconciliation: this client never created a provisional copy.
func (s *Store) handleRemoteMessage(data json.RawMessage) {
	var payload models.MessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("drop malformed message event: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[payload.ToGroup] = append(s.groups[payload.ToGroup], &models.Message{
		ServerID:   payload.ID,
		GroupID:    payload.ToGroup,
		Type:       payload.Type,
		Content:    payload.Content,
		From:       payload.From,
		CreateTime: payload.CreateTime,
		State:      models.StateConfirmed,
	})
}

func (s *Store) find(groupID, localID string) *models.Message {
	for _, msg := range s.groups[groupID] {
		if msg.LocalID == localID {
			return msg
		}
	}
	return nil
}
