package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"flappy-casino/internal/config"
	"flappy-casino/internal/game"
	"flappy-casino/internal/logging"
	"flappy-casino/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type bot struct {
	cfg  config.BotConfig
	rnd  *rand.Rand
	conn *websocket.Conn

	readySent bool
	// last turn acted on, so repeated snapshots of the same turn are ignored
	lastTurn string
}

func main() {
	_ = godotenv.Load()
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.WSURL, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.WSURL).Msg("dial failed")
	}
	defer conn.Close()

	b := &bot{cfg: cfg, rnd: rand.New(rand.NewSource(seed)), conn: conn}
	b.send(ws.JoinTableMessage{Envelope: ws.Envelope{Type: ws.MsgJoinTable, RequestID: "join"}, Nick: cfg.Nick, PIN: cfg.PIN})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Msg("connection closed")
			return
		}
		b.handle(data)
	}
}

func (b *bot) handle(data []byte) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return
	}
	switch base.Type {
	case game.MsgTableUpdate:
		var u game.TableUpdate
		if err := json.Unmarshal(data, &u); err != nil {
			return
		}
		b.onUpdate(u)
	case game.MsgShowdownResult:
		var r game.ShowdownResult
		if err := json.Unmarshal(data, &r); err == nil {
			log.Info().Str("hand_id", r.HandID).Str("hand_name", r.HandName).Interface("payouts", r.Payouts).Msg("hand_over")
		}
	case game.MsgError:
		var e game.ErrorMsg
		if err := json.Unmarshal(data, &e); err == nil {
			log.Warn().Str("reason", e.Reason).Str("request_id", e.RequestID).Msg("rejected")
		}
	case game.MsgLeft:
		log.Info().Msg("removed from table")
	}
}

func (b *bot) onUpdate(u game.TableUpdate) {
	var me *game.PlayerView
	for i := range u.Players {
		if u.Players[i].Nick == b.cfg.Nick {
			me = &u.Players[i]
		}
	}
	if me == nil {
		return
	}
	if u.Phase == string(game.PhaseIdle) {
		b.lastTurn = ""
		if me.IsReady {
			return
		}
		if me.Chips == 0 && b.cfg.Rebuy > 0 {
			b.send(ws.AddChipsMessage{Envelope: ws.Envelope{Type: ws.MsgAddChips}, Amount: b.cfg.Rebuy})
			return
		}
		if me.Chips > 0 && !b.readySent {
			b.readySent = true
			b.send(ws.Envelope{Type: ws.MsgSetReady})
		}
		return
	}
	b.readySent = false
	if u.ActivePlayerNick != b.cfg.Nick {
		return
	}
	turn := fmt.Sprintf("%s/%s/%d/%d", u.HandID, u.Phase, u.CurrentBet, me.BetInRound)
	if turn == b.lastTurn {
		return
	}
	b.lastTurn = turn
	b.send(decide(b.rnd, u.CurrentBet, me.BetInRound, me.Chips, b.cfg.RaiseStep))
}

// decide picks a legal action: never a check facing a bet, never a raise
// the stack cannot cover.
func decide(rnd *rand.Rand, currentBet, betInRound, chips, raiseStep int64) ws.PlayerActionMessage {
	msg := ws.PlayerActionMessage{Envelope: ws.Envelope{Type: ws.MsgPlayerAction}}
	toCall := currentBet - betInRound
	target := currentBet + raiseStep
	canRaise := raiseStep > 0 && target-betInRound <= chips

	r := rnd.Intn(10)
	switch {
	case toCall > 0 && r == 0:
		msg.Action = string(game.ActionFold)
	case r >= 7 && canRaise:
		msg.Action = string(game.ActionRaise)
		msg.Amount = target
	case toCall == 0:
		msg.Action = string(game.ActionCheck)
	default:
		msg.Action = string(game.ActionCall)
	}
	return msg
}

func (b *bot) send(msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := b.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Error().Err(err).Msg("write failed")
	}
}
