package game

// Outbound message types.
const (
	MsgTableUpdate    = "table_update"
	MsgYourCards      = "your_cards"
	MsgShowdownResult = "showdown_result"
	MsgTableJoined    = "table_joined"
	MsgSeatJoined     = "seat_joined"
	MsgRebuySuccess   = "rebuy_success"
	MsgLeft           = "left_successfully"
	MsgError          = "error_msg"
)

const (
	RoleSeat     = "player"
	RoleObserver = "observer"
)

type PlayerView struct {
	Nick       string `json:"nick"`
	Chips      int64  `json:"chips"`
	Pending    int64  `json:"pending_chips,omitempty"`
	BetInRound int64  `json:"bet_in_round"`
	LastAction string `json:"last_action"`
	IsReady    bool   `json:"is_ready"`
	Folded     bool   `json:"folded"`
	Ghost      bool   `json:"ghost,omitempty"`
}

type TableUpdate struct {
	Type             string       `json:"type"`
	ProtocolVersion  string       `json:"protocol_version"`
	TableID          string       `json:"table_id"`
	HandID           string       `json:"hand_id,omitempty"`
	Phase            string       `json:"phase"`
	Pot              int64        `json:"pot"`
	CurrentBet       int64        `json:"current_bet"`
	Board            []string     `json:"board"`
	ActivePlayerNick string       `json:"active_player_nick"`
	DealerNick       string       `json:"dealer_nick,omitempty"`
	MaxPlayers       int          `json:"max_players"`
	NumObservers     int          `json:"num_observers"`
	Players          []PlayerView `json:"players"`
	ServerNow        int64        `json:"server_now"`
	LastMoveTime     int64        `json:"last_move_time,omitempty"`
	TurnTimeoutMS    int64        `json:"turn_timeout_ms"`
}

type YourCards struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	HandID          string   `json:"hand_id"`
	Cards           []string `json:"cards"`
}

type RevealedHand struct {
	Nick  string   `json:"nick"`
	Cards []string `json:"cards"`
}

type ShowdownResult struct {
	Type            string           `json:"type"`
	ProtocolVersion string           `json:"protocol_version"`
	HandID          string           `json:"hand_id"`
	HandName        string           `json:"hand_name"`
	Pot             int64            `json:"pot"`
	Board           []string         `json:"board"`
	Payouts         map[string]int64 `json:"payouts"`
	Revealed        []RevealedHand   `json:"revealed"`
	Walkover        bool             `json:"walkover"`
}

type TableJoined struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Role            string `json:"role"`
	Chips           int64  `json:"chips"`
	Balance         int64  `json:"balance"`
}

type SeatJoined struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Chips           int64  `json:"chips"`
	Balance         int64  `json:"balance"`
}

type RebuySuccess struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Amount          int64  `json:"amount"`
	Chips           int64  `json:"chips"`
	Pending         int64  `json:"pending_chips"`
	Balance         int64  `json:"balance"`
}

type LeftTable struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Reason          string `json:"reason,omitempty"`
	Balance         int64  `json:"balance"`
}

type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`
	Reason          string `json:"reason"`
}
