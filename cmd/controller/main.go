// Controller node: operator panel, interlock and heartbeat master.
package main

import (
	"context"
	"time"

	"launchlink-go/bus"
	"launchlink-go/internal/board"
	"launchlink-go/services/bridge"
	"launchlink-go/services/config"
	"launchlink-go/services/interlock"
	"launchlink-go/services/link"
	"launchlink-go/types"
	"launchlink-go/x/fmtx"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] controller boot")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "controller")
	b := bus.NewBus(8)

	lc, err := config.NewConfigService().Publish(ctx, b.NewConnection("config"))
	if err != nil {
		board.Halt(nil, "config", err)
	}

	brd, err := board.Open(board.PicoLink, true)
	if err != nil {
		board.Halt(nil, "board", err)
	}
	led := brd.StatusLED()

	rc, err := link.RadioSettings(lc.Radio)
	if err != nil {
		board.Halt(led, "radio settings", err)
	}
	// An unverified radio must never carry an ignite command.
	if err := brd.Radio.Configure(rc); err != nil {
		board.Halt(led, "radio", err)
	}
	led(true)

	m := interlock.New(interlock.ConfigFrom(lc.Interlock), brd.ControllerPins(), link.NewRadioSender(brd.Radio))
	svc := link.New(brd.Radio, types.RoleController, link.Wrap[types.InterlockStatus](m), b.NewConnection("link"))

	status := b.NewConnection("console").Subscribe(link.TopicStatus)
	go func() {
		for msg := range status.Channel() {
			st, ok := msg.Payload.(types.InterlockStatus)
			if !ok {
				continue
			}
			fmtx.Printf("[status] link=%s continuity=%s ignition=%s armed=%t latch=%t sent=%d\r\n",
				st.Connection, st.Continuity, st.Ignition, st.Armed, st.MustRelease, st.IgniteSent)
		}
	}()

	bridge.New(b.NewConnection("bridge"), brd.UplinkDialer()).Start(ctx)

	println("[main] link loop running")
	_ = svc.Run(ctx)
}
