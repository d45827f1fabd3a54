package integration

import (
	"context"

	"github.com/asaavedra/agent-resin/pkg/sdcp"
)

const (
	ButtonPause  = "pause"
	ButtonResume = "resume"
	ButtonStop   = "stop"
)

// ButtonDescription es un control expuesto como botón.
type ButtonDescription struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	press func(context.Context, sdcp.Printer) sdcp.Reply
}

// Buttons lista los botones de control en orden de despliegue.
var Buttons = []ButtonDescription{
	{
		Key:   ButtonPause,
		Name:  "Pause Print",
		Icon:  "mdi:pause",
		press: func(ctx context.Context, p sdcp.Printer) sdcp.Reply { return p.Pause(ctx) },
	},
	{
		Key:   ButtonResume,
		Name:  "Resume Print",
		Icon:  "mdi:play",
		press: func(ctx context.Context, p sdcp.Printer) sdcp.Reply { return p.Resume(ctx) },
	},
	{
		Key:   ButtonStop,
		Name:  "Stop Print",
		Icon:  "mdi:stop",
		press: func(ctx context.Context, p sdcp.Printer) sdcp.Reply { return p.Stop(ctx) },
	},
}

func findButton(key string) (ButtonDescription, bool) {
	for _, b := range Buttons {
		if b.Key == key {
			return b, true
		}
	}

	return ButtonDescription{}, false
}
