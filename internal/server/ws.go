package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/voxmate/voxmate/internal/app"
)

// clientMessage is one inbound websocket frame.
type clientMessage struct {
	// Type is "transcript", "speaking", or "spoken".
	Type string `json:"type"`

	// Text is the raw speech-to-text transcript for "transcript" frames.
	Text string `json:"text,omitempty"`
}

// handleWS upgrades the connection and runs one game session on it.
// The client streams transcripts up; the server streams [app.Event]
// frames down. "speaking" and "spoken" frames bracket the client's
// text-to-speech playback so transcripts of our own voice are dropped.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "err", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session ended")

	ctx := r.Context()
	s.metrics.ActiveSessions.Add(ctx, 1)
	defer s.metrics.ActiveSessions.Add(ctx, -1)

	opts := append([]app.Option{
		app.WithLogger(s.logger),
		app.WithMetrics(s.metrics),
	}, s.gameOpts...)
	if s.analyzer != nil {
		opts = append(opts, app.WithAnalyzer(s.analyzer))
	}
	if s.stats != nil {
		opts = append(opts, app.WithStats(s.stats))
	}
	if s.store != nil {
		opts = append(opts, app.WithArchive(s.store))
	}

	g := app.New(opts...)
	defer g.Close()
	g.Start(ctx)
	s.logger.Info("session started", "remote", r.RemoteAddr)

	// Tell the client where the board stands before the first utterance.
	if err := wsjson.Write(ctx, conn, app.Event{Type: app.EventBoard, FEN: g.FEN()}); err != nil {
		return
	}

	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				errors.Is(err, context.Canceled) {
				conn.Close(websocket.StatusNormalClosure, "bye")
				return
			}
			s.logger.Warn("websocket read failed", "err", err)
			return
		}

		for _, ev := range s.dispatch(ctx, g, msg) {
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				s.logger.Warn("websocket write failed", "err", err)
				return
			}
		}
	}
}

// dispatch applies one client frame to the session.
func (s *Server) dispatch(ctx context.Context, g *app.Game, msg clientMessage) []app.Event {
	switch msg.Type {
	case "transcript":
		return g.HandleTranscript(ctx, msg.Text)
	case "speaking":
		g.Gate().BeginSpeaking()
	case "spoken":
		// Playback finished; go back to listening.
		g.Gate().FinishSpeaking()
		g.Gate().StartListening()
	default:
		s.logger.Debug("unknown client frame", "type", msg.Type)
	}
	return nil
}
