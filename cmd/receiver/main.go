// Receiver node: answers heartbeats and drives the igniter.
package main

import (
	"context"
	"time"

	"launchlink-go/bus"
	"launchlink-go/internal/board"
	"launchlink-go/services/bridge"
	"launchlink-go/services/config"
	"launchlink-go/services/igniter"
	"launchlink-go/services/link"
	"launchlink-go/types"
	"launchlink-go/x/fmtx"
)

func main() {
	time.Sleep(2 * time.Second)
	println("[main] receiver boot")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "receiver")
	b := bus.NewBus(8)

	lc, err := config.NewConfigService().Publish(ctx, b.NewConnection("config"))
	if err != nil {
		board.Halt(nil, "config", err)
	}

	brd, err := board.Open(board.PicoLink, false)
	if err != nil {
		board.Halt(nil, "board", err)
	}
	led := brd.StatusLED()

	rc, err := link.RadioSettings(lc.Radio)
	if err != nil {
		board.Halt(led, "radio settings", err)
	}
	if err := brd.Radio.Configure(rc); err != nil {
		board.Halt(led, "radio", err)
	}
	led(true)

	r := igniter.New(igniter.ConfigFrom(lc.Receiver), brd.ReceiverPins(), link.NewRadioSender(brd.Radio))
	svc := link.New(brd.Radio, types.RoleReceiver, link.Wrap[types.ReceiverStatus](r), b.NewConnection("link"))

	rssi := b.NewConnection("console").Subscribe(link.TopicRSSI)
	go func() {
		for msg := range rssi.Channel() {
			if q, ok := msg.Payload.(types.PacketQuality); ok {
				fmtx.Printf("[radio] %s rssi=%d snr=%d\r\n", q.Msg, q.RSSI, q.SNR)
			}
		}
	}()

	bridge.New(b.NewConnection("bridge"), brd.UplinkDialer()).Start(ctx)

	println("[main] link loop running")
	_ = svc.Run(ctx)
}
