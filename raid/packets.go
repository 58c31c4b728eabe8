package raid

import "encoding/json"

const (
	ActionStartRaid  = "start_raid"
	ActionSubmitPart = "submit_part"
)

// Action is one inbound client message, decoded from its JSON frame before it
// is allowed anywhere near the session.
type Action struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// StateData is the full session snapshot the frontend renders. ActivePlayer is
// null outside the active phase; Responses is always three slots.
type StateData struct {
	Status       string   `json:"status"`
	ActivePlayer *string  `json:"active_player"`
	Responses    []string `json:"responses"`
	BossHP       int      `json:"boss_hp"`
	Question     string   `json:"question"`
	Members      []string `json:"members"`
}

type serverMessage struct {
	Type    string     `json:"type"`
	Data    *StateData `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
}

func marshalStateUpdate(data StateData) []byte {
	bytes, _ := json.Marshal(serverMessage{Type: "state_update", Data: &data})
	return bytes
}

func marshalNotification(text string) []byte {
	bytes, _ := json.Marshal(serverMessage{Type: "notification", Message: text})
	return bytes
}
