package adaptor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

// dialects lists the supported dialects in the order their prefixes are
// matched.
var dialects = []*dialect{v020, v025, v027, v031, v032, v033}

// Caller is the part of a transport Detect needs.
type Caller interface {
	Execute(ctx context.Context, method string, params json.RawMessage) (rpctypes.RPCResponse, error)
}

// ForVersion returns the adaptor serving a node that reports version. There
// is no fallback: unknown versions fail with an *UnsupportedVersionError.
func ForVersion(version string) (Adaptor, error) {
	for _, d := range dialects {
		for _, prefix := range d.prefixes {
			if strings.HasPrefix(version, prefix) {
				return codec{d: d}, nil
			}
		}
	}
	return nil, &UnsupportedVersionError{Version: version}
}

// All returns one adaptor per supported dialect, oldest first.
func All() []Adaptor {
	all := make([]Adaptor, 0, len(dialects))
	for _, d := range dialects {
		all = append(all, codec{d: d})
	}
	return all
}

// Detect asks the node for its status and selects the adaptor for the
// version it reports. Only result.node_info.version is read, so detection
// works before the dialect is known.
func Detect(ctx context.Context, caller Caller) (Adaptor, error) {
	version, err := NodeVersion(ctx, caller)
	if err != nil {
		return nil, err
	}
	return ForVersion(version)
}

// NodeVersion returns the version string of the node behind caller.
func NodeVersion(ctx context.Context, caller Caller) (string, error) {
	resp, err := caller.Execute(ctx, MethodStatus, json.RawMessage(`{}`))
	if err != nil {
		return "", err
	}
	result, err := rpctypes.Unwrap(resp)
	if err != nil {
		return "", err
	}

	status, err := decodeObject(rootPath, result)
	if err != nil {
		return "", err
	}
	nodeInfo, err := status.object("node_info")
	if err != nil {
		return "", err
	}
	version, err := nodeInfo.str("version")
	if err != nil {
		return "", fmt.Errorf("reading node version: %w", err)
	}
	return version, nil
}
