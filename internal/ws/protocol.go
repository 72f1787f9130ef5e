package ws

// Inbound message types.
const (
	MsgJoinTable    = "join_table"
	MsgJoinSeat     = "join_seat"
	MsgSetReady     = "set_ready"
	MsgPlayerAction = "player_action"
	MsgAddChips     = "add_chips"
	MsgLeaveTable   = "leave_table"

	MsgAck = "ack"
)

const maxRequestIDLen = 64

// Envelope carries the fields every inbound message shares. join_seat,
// set_ready and leave_table have no other fields.
type Envelope struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
}

type JoinTableMessage struct {
	Envelope
	Nick string `json:"nick"`
	PIN  string `json:"pin"`
}

type PlayerActionMessage struct {
	Envelope
	Action string `json:"action"`
	Amount int64  `json:"amount,omitempty"`
}

type AddChipsMessage struct {
	Envelope
	Amount int64 `json:"amount"`
}

// Ack confirms an accepted command that carried a request_id.
type Ack struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id"`
	Command         string `json:"command"`
}
