// Package remote implements the line-oriented UDP control channel.
package remote

import (
	"fmt"
	"strconv"
	"strings"

	"beatbox-service/internal/types"
)

type Kind int

const (
	KindMode Kind = iota
	KindTempo
	KindVolume
	KindPlay
	KindStatus
	KindStop
)

var kindNames = map[string]Kind{
	"mode":   KindMode,
	"tempo":  KindTempo,
	"volume": KindVolume,
	"play":   KindPlay,
	"status": KindStatus,
	"stop":   KindStop,
}

func (k Kind) String() string {
	for name, v := range kindNames {
		if v == k {
			return name
		}
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Command is one parsed request. Only the field matching Kind is set.
type Command struct {
	Kind    Kind
	Mode    types.Mode
	Value   int
	Trigger types.Trigger
}

// Parse reads "verb [argument]". Verbs are case-insensitive.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	verb := strings.ToLower(fields[0])
	kind, ok := kindNames[verb]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q", fields[0])
	}

	cmd := Command{Kind: kind}
	switch kind {
	case KindStatus, KindStop:
		if len(fields) != 1 {
			return Command{}, fmt.Errorf("%s takes no argument", verb)
		}
		return cmd, nil
	}

	if len(fields) != 2 {
		return Command{}, fmt.Errorf("%s takes exactly one argument", verb)
	}
	arg := fields[1]

	var err error
	switch kind {
	case KindMode:
		cmd.Mode, err = types.ParseMode(arg)
	case KindPlay:
		cmd.Trigger, err = types.ParseTrigger(arg)
	default:
		cmd.Value, err = strconv.Atoi(arg)
		if err != nil {
			err = fmt.Errorf("invalid %s value %q", verb, arg)
		}
	}
	if err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// Handler applies commands to the running system.
type Handler interface {
	SetMode(m types.Mode) error
	SetTempo(bpm int) error
	SetVolume(v int) error
	Play(t types.Trigger) error
	Status() types.Status
	Stop()
}

// Dispatch parses line, applies it to h and returns the reply text.
func Dispatch(h Handler, line string) string {
	cmd, err := Parse(line)
	if err != nil {
		return "error: " + err.Error()
	}

	switch cmd.Kind {
	case KindMode:
		err = h.SetMode(cmd.Mode)
	case KindTempo:
		err = h.SetTempo(cmd.Value)
	case KindVolume:
		err = h.SetVolume(cmd.Value)
	case KindPlay:
		err = h.Play(cmd.Trigger)
	case KindStatus:
		return h.Status().String()
	case KindStop:
		h.Stop()
	}

	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
