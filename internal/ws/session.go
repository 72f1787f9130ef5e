package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"flappy-casino/internal/config"
	"flappy-casino/internal/game"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
)

var (
	errInvalidMessage   = errors.New("invalid_message")
	errInvalidRequestID = errors.New("invalid_request_id")
	errSessionClosed    = errors.New("session_closed")
)

type command struct {
	connID     string
	raw        []byte
	disconnect bool
	fn         func()
}

// TableSession owns one engine. Every inbound message, disconnect, sweep tick
// and deferred broadcast runs on the goroutine inside Run.
type TableSession struct {
	engine        *game.Engine
	notify        game.Notifier
	clock         quartz.Clock
	sweepInterval time.Duration
	cmds          chan command
	done          chan struct{}
}

func NewTableSession(cfg config.TableConfig, l game.Ledger, r game.HandRanker, n game.Notifier, clock quartz.Clock) *TableSession {
	if clock == nil {
		clock = quartz.NewReal()
	}
	ts := &TableSession{
		notify:        n,
		clock:         clock,
		sweepInterval: cfg.SweepInterval,
		cmds:          make(chan command, 64),
		done:          make(chan struct{}),
	}
	ts.engine = game.NewEngine(game.Config{
		TableID:       cfg.ID,
		MaxSeats:      cfg.MaxSeats,
		BuyIn:         cfg.BuyIn,
		SmallBlind:    cfg.SmallBlind,
		BigBlind:      cfg.BigBlind,
		TurnTimeout:   cfg.TurnTimeout,
		ShowdownPause: cfg.ShowdownPause,
	}, l, r, n, game.WithClock(clock), game.WithScheduler(ts.schedule))
	return ts
}

const shutdownSettleTimeout = 10 * time.Second

// Run processes commands until ctx is cancelled, then cashes out every seat
// before returning.
func (ts *TableSession) Run(ctx context.Context) error {
	defer close(ts.done)
	ticker := ts.clock.NewTicker(ts.sweepInterval, "table", "sweep")
	defer ticker.Stop()
	log.Info().Dur("sweep_interval", ts.sweepInterval).Msg("table_session_started")
	for {
		select {
		case <-ctx.Done():
			// ctx is already cancelled; the Ledger still needs a live one
			settleCtx, cancel := context.WithTimeout(context.Background(), shutdownSettleTimeout)
			ts.engine.Shutdown(settleCtx)
			cancel()
			log.Info().Msg("table_session_stopped")
			return nil
		case <-ticker.C:
			ts.engine.Sweep(ctx)
		case cmd := <-ts.cmds:
			ts.handle(ctx, cmd)
		}
	}
}

func (ts *TableSession) post(cmd command) error {
	select {
	case ts.cmds <- cmd:
		return nil
	case <-ts.done:
		return errSessionClosed
	}
}

func (ts *TableSession) schedule(d time.Duration, fn func()) {
	ts.clock.AfterFunc(d, func() {
		_ = ts.post(command{fn: fn})
	}, "table", "showdown_pause")
}

// Snapshot returns the public table view, read on the session goroutine.
func (ts *TableSession) Snapshot(ctx context.Context) (game.TableUpdate, error) {
	out := make(chan game.TableUpdate, 1)
	if err := ts.post(command{fn: func() { out <- ts.engine.Snapshot() }}); err != nil {
		return game.TableUpdate{}, err
	}
	select {
	case snap := <-out:
		return snap, nil
	case <-ts.done:
		return game.TableUpdate{}, errSessionClosed
	case <-ctx.Done():
		return game.TableUpdate{}, ctx.Err()
	}
}

func (ts *TableSession) handle(ctx context.Context, cmd command) {
	switch {
	case cmd.fn != nil:
		cmd.fn()
	case cmd.disconnect:
		ts.engine.Disconnect(ctx, cmd.connID)
	default:
		ts.dispatch(ctx, cmd.connID, cmd.raw)
	}
}

func (ts *TableSession) dispatch(ctx context.Context, connID string, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		ts.reject(connID, "", "", errInvalidMessage)
		return
	}
	if len(env.RequestID) > maxRequestIDLen {
		ts.reject(connID, env.Type, env.RequestID, errInvalidRequestID)
		return
	}

	var err error
	switch env.Type {
	case MsgJoinTable:
		var m JoinTableMessage
		if err = json.Unmarshal(raw, &m); err == nil {
			err = ts.engine.Join(ctx, connID, m.Nick, m.PIN)
		}
	case MsgJoinSeat:
		err = ts.engine.TakeSeat(ctx, connID)
	case MsgSetReady:
		err = ts.engine.SetReady(ctx, connID)
	case MsgPlayerAction:
		var m PlayerActionMessage
		if err = json.Unmarshal(raw, &m); err == nil {
			err = ts.engine.Act(ctx, connID, game.ActionType(m.Action), m.Amount)
		}
	case MsgAddChips:
		var m AddChipsMessage
		if err = json.Unmarshal(raw, &m); err == nil {
			err = ts.engine.AddChips(ctx, connID, m.Amount)
		}
	case MsgLeaveTable:
		err = ts.engine.Leave(ctx, connID)
	default:
		err = errInvalidMessage
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		err = errInvalidMessage
	}
	if err != nil {
		ts.reject(connID, env.Type, env.RequestID, err)
		return
	}
	metricCommandsAccepted.Add(1)
	if env.RequestID != "" {
		ts.notify.Send(connID, Ack{Type: MsgAck, ProtocolVersion: game.ProtocolVersion, RequestID: env.RequestID, Command: env.Type})
	}
}

// reject answers only the offending connection.
func (ts *TableSession) reject(connID, msgType, requestID string, err error) {
	reason := mapError(err)
	metricCommandsRejected.Add(1)
	log.Debug().Str("conn_id", connID).Str("type", msgType).Str("reason", reason).Err(err).Msg("command_rejected")
	ts.notify.Send(connID, game.ErrorMsg{
		Type:            game.MsgError,
		ProtocolVersion: game.ProtocolVersion,
		RequestID:       requestID,
		Reason:          reason,
	})
}
