package command

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-saga/internal/listener"
)

const defaultListenerPath = "/ws"

type ListenerConfig struct {
	Port uint16 `json:"port"`
	Path string `json:"path,omitempty"`
}

func (cl *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if cl.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}
	if cl.Path != "" && !strings.HasPrefix(cl.Path, "/") {
		el.Add(fmt.Errorf("path must start with /"))
	}

	return el.Err()
}

func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) *listener.WebsocketListener {
	path := cl.Path
	if path == "" {
		path = defaultListenerPath
	}
	return listener.NewWebsocketListener(cl.Port, path, cm)
}
