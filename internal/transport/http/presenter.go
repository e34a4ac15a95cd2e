package http

import (
	"github.com/shovanNITS/Quiz-Generator-App/internal/app"
	"github.com/shovanNITS/Quiz-Generator-App/internal/auth"
)

// wsPresenter turns controller and gate output into socket envelopes.
// Sends never block once the writer has stopped.
type wsPresenter struct {
	send chan<- outboundMessage
	done <-chan struct{}
}

func (p *wsPresenter) Render(view app.View) {
	p.emit("state", view)
}

func (p *wsPresenter) Tick(elapsed string) {
	p.emit("tick", tickPayload{Elapsed: elapsed})
}

func (p *wsPresenter) Notify(message string) {
	p.emit("notice", messagePayload{Message: message})
}

func (p *wsPresenter) RenderProfile(profile auth.Profile) {
	p.emit("profile", profile)
}

func (p *wsPresenter) report(err error) {
	p.emit("error", messagePayload{Message: err.Error()})
}

func (p *wsPresenter) emit(typ string, payload any) {
	select {
	case p.send <- outboundMessage{Type: typ, Payload: payload}:
	case <-p.done:
	}
}
