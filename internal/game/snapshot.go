package game

// Snapshot is the public view of the table sent to every member.
func (e *Engine) Snapshot() TableUpdate {
	t := e.table
	now := e.now()
	players := make([]PlayerView, 0, len(t.Seats))
	for _, s := range t.Seats {
		players = append(players, PlayerView{
			Nick:       s.Nick,
			Chips:      s.Stack,
			Pending:    s.PendingChips,
			BetInRound: s.BetInRound,
			LastAction: s.LastAction,
			IsReady:    s.Ready,
			Folded:     s.InHand && s.Folded,
			Ghost:      s.Ghost,
		})
	}
	u := TableUpdate{
		Type:            MsgTableUpdate,
		ProtocolVersion: ProtocolVersion,
		TableID:         t.ID,
		Phase:           string(t.Phase),
		Pot:             t.Pot,
		CurrentBet:      t.CurrentBet,
		Board:           cardStrings(t.Board),
		MaxPlayers:      e.cfg.MaxSeats,
		NumObservers:    len(t.Observers),
		Players:         players,
		ServerNow:       now.UnixMilli(),
		TurnTimeoutMS:   e.cfg.TurnTimeout.Milliseconds(),
	}
	if t.Phase != PhaseIdle {
		u.HandID = t.HandID
		u.LastMoveTime = t.LastMoveTime.UnixMilli()
		if t.DealerIndex >= 0 && t.DealerIndex < len(t.Seats) {
			u.DealerNick = t.Seats[t.DealerIndex].Nick
		}
	}
	if t.Phase.Betting() && t.ActiveIndex >= 0 {
		u.ActivePlayerNick = t.Seats[t.ActiveIndex].Nick
	}
	return u
}

func (e *Engine) members() []string {
	t := e.table
	out := make([]string, 0, len(t.Seats)+len(t.Observers))
	for _, s := range t.Seats {
		if s.ConnID != "" {
			out = append(out, s.ConnID)
		}
	}
	for _, o := range t.Observers {
		out = append(out, o.ConnID)
	}
	return out
}

// publish broadcasts the snapshot, or after a showdown defers it so clients
// can show the result first.
func (e *Engine) publish() {
	if e.holdBroadcast {
		e.holdBroadcast = false
		e.schedule(e.cfg.ShowdownPause, e.Broadcast)
		return
	}
	e.Broadcast()
}

func (e *Engine) Broadcast() {
	snap := e.Snapshot()
	for _, connID := range e.members() {
		e.notify.Send(connID, snap)
	}
}
