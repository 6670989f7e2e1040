package signal

import (
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/protocol"
)

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendEnvelope(conn, protocol.Envelope{Type: protocol.TypePong})
}

func (ctl *SignalWSController) sendError(conn *WsSignalConn, msg string) {
	frame, err := protocol.Encode(protocol.TypeError, protocol.ErrorBody{Error: msg})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendError encode")
		return
	}
	_ = conn.TrySend(frame)
}

func (ctl *SignalWSController) sendEnvelope(conn *WsSignalConn, env protocol.Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendEnvelope marshal")
		return
	}
	_ = conn.TrySend(b)
}
