package sandfs

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// ReadJSON decodes the file as JSON into v.
func (n *Node) ReadJSON(v any) error {
	return n.readFormat("json", sonic.Unmarshal, v)
}

// WriteJSON writes v as indented JSON.
func (n *Node) WriteJSON(v any) error {
	return n.writeFormat("json", func(v any) ([]byte, error) {
		return sonic.MarshalIndent(v, "", "  ")
	}, v)
}

// ReadYAML decodes the file as YAML into v.
func (n *Node) ReadYAML(v any) error {
	return n.readFormat("yaml", yaml.Unmarshal, v)
}

// WriteYAML writes v as YAML.
func (n *Node) WriteYAML(v any) error {
	return n.writeFormat("yaml", yaml.Marshal, v)
}

// ReadTOML decodes the file as TOML into v.
func (n *Node) ReadTOML(v any) error {
	return n.readFormat("toml", toml.Unmarshal, v)
}

// WriteTOML writes v as TOML.
func (n *Node) WriteTOML(v any) error {
	return n.writeFormat("toml", toml.Marshal, v)
}

func (n *Node) readFormat(format string, unmarshal func([]byte, any) error, v any) error {
	b, err := n.Read()
	if err != nil {
		return err
	}
	start := n.sb.timer()
	if err := unmarshal(b, v); err != nil {
		return n.finish(opRead, start, fmt.Errorf("%w: parse %s: %v", ErrEncoding, format, err))
	}
	return n.finish(opRead, start, nil)
}

func (n *Node) writeFormat(format string, marshal func(any) ([]byte, error), v any) error {
	start := n.sb.timer()
	b, err := marshal(v)
	if err != nil {
		return n.finish(opWrite, start, fmt.Errorf("%w: marshal %s: %v", ErrEncoding, format, err))
	}
	return n.Write(b)
}
