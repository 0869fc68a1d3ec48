package tws

import (
	"encoding/json"
	"fmt"
)

// eventEnvelope is the wire framing for inbound events.
type eventEnvelope struct {
	Type string          `json:"type"`
	Msg  json.RawMessage `json:"msg"`
}

// commandEnvelope is the wire framing for outbound commands.
type commandEnvelope struct {
	Cmd    string  `json:"cmd"`
	Params Command `json:"params"`
}

// EncodeCommand frames a command for the wire.
func EncodeCommand(cmd Command) ([]byte, error) {
	data, err := json.Marshal(commandEnvelope{Cmd: cmd.Cmd(), Params: cmd})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", cmd.Cmd(), err)
	}
	return data, nil
}

// DecodeEvent parses one framed event from the wire. Unknown event types
// are an error; the wire adapter logs and drops them.
func DecodeEvent(data []byte) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	switch env.Type {
	case "nextValidId":
		ev, err := decodeMsg[NextValidID](env)
		return ev, err
	case "managedAccounts":
		ev, err := decodeMsg[ManagedAccounts](env)
		return ev, err
	case "historicalData":
		ev, err := decodeMsg[HistoricalData](env)
		return ev, err
	case "openOrder":
		ev, err := decodeMsg[OpenOrder](env)
		return ev, err
	case "orderStatus":
		ev, err := decodeMsg[OrderStatus](env)
		return ev, err
	case "openOrderEnd":
		ev, err := decodeMsg[OpenOrderEnd](env)
		return ev, err
	case "position":
		ev, err := decodeMsg[Position](env)
		return ev, err
	case "positionEnd":
		ev, err := decodeMsg[PositionEnd](env)
		return ev, err
	case "accountSummary":
		ev, err := decodeMsg[AccountSummary](env)
		return ev, err
	case "accountSummaryEnd":
		ev, err := decodeMsg[AccountSummaryEnd](env)
		return ev, err
	case "updateAccountTime":
		ev, err := decodeMsg[UpdateAccountTime](env)
		return ev, err
	case "updateAccountValue":
		ev, err := decodeMsg[UpdateAccountValue](env)
		return ev, err
	case "updatePortfolio":
		ev, err := decodeMsg[UpdatePortfolio](env)
		return ev, err
	case "accountDownloadEnd":
		ev, err := decodeMsg[AccountDownloadEnd](env)
		return ev, err
	case "tickPrice":
		ev, err := decodeMsg[TickPrice](env)
		return ev, err
	case "tickSize":
		ev, err := decodeMsg[TickSize](env)
		return ev, err
	case "error":
		ev, err := decodeMsg[ErrorMsg](env)
		return ev, err
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

// decodeMsg unmarshals the envelope payload into the tagged variant. An
// absent payload decodes to the zero value (sentinel events carry none).
func decodeMsg[T Event](env eventEnvelope) (T, error) {
	var ev T
	if len(env.Msg) == 0 {
		return ev, nil
	}
	if err := json.Unmarshal(env.Msg, &ev); err != nil {
		return ev, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return ev, nil
}
