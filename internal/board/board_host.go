//go:build !(rp2040 || rp2350)

package board

import (
	"context"
	"io"

	"launchlink-go/errcode"
	"launchlink-go/services/bridge"
)

// Open needs the RP2 machine package; host builds only validate the plan.
func Open(p Plan, controller bool) (*Board, error) {
	if err := p.Validate(controller); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "board.Open", Err: err}
	}
	return nil, &errcode.E{C: errcode.Unsupported, Op: "board.Open", Msg: "no GPIO on this target"}
}

func (b *Board) UplinkDialer() bridge.Dialer {
	return func(context.Context) (io.ReadWriteCloser, error) {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "board.UplinkDialer"}
	}
}
