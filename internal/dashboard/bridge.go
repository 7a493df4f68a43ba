package dashboard

import (
	"encoding/json"
	"time"

	"github.com/feedbackpulse/pulse/internal/store"
)

// Attach subscribes the server to store events. Every mutation becomes a
// change frame followed by a refreshed stats frame; pulls and resets send
// a pull_complete frame so clients reload in full.
func Attach(srv *Server, st *store.Store) {
	st.Subscribe(func(e store.Event) {
		now := time.Now()

		switch e.Kind {
		case store.EventFeedback, store.EventRegion, store.EventCategory:
			data, err := json.Marshal(ChangeData{ID: e.ID, Action: e.Action})
			if err != nil {
				return
			}
			srv.Broadcast(Message{Type: messageTypeFor(e.Kind), Timestamp: now, Data: data})

		case store.EventPull, store.EventReset:
			srv.Broadcast(Message{Type: MessageTypePullComplete, Timestamp: now})
		}

		srv.BroadcastStats(st.Stats())
	})
}

func messageTypeFor(kind store.EventKind) MessageType {
	switch kind {
	case store.EventRegion:
		return MessageTypeRegionUpdate
	case store.EventCategory:
		return MessageTypeCategoryUpdate
	default:
		return MessageTypeFeedbackUpdate
	}
}
