// Package cursor converts raw index positions to and from opaque resume tokens.
//
// A token is the unpadded base64url form of a msgpack document holding a
// version number and the position's attributes. Map keys are sorted while
// encoding, so equal positions always produce the same token.
package cursor

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrMalformed is returned when a token cannot be decoded into a complete position.
var ErrMalformed = errors.New("valnk: malformed cursor")

// Position is a raw index position: the key attributes of the last item seen.
type Position map[string]types.AttributeValue

const version = 1

// maxTokenLen bounds the tokens Decode accepts. A real index position
// encodes to a few hundred bytes.
const maxTokenLen = 4096

type envelope struct {
	V int                  `msgpack:"v"`
	P map[string]attrValue `msgpack:"p"`
}

// attrValue mirrors the DynamoDB attribute value union. T names the member.
type attrValue struct {
	T    string               `msgpack:"t"`
	S    string               `msgpack:"s,omitempty"`
	B    []byte               `msgpack:"b,omitempty"`
	Bool bool                 `msgpack:"o,omitempty"`
	L    []attrValue          `msgpack:"l,omitempty"`
	M    map[string]attrValue `msgpack:"m,omitempty"`
	SS   []string             `msgpack:"ss,omitempty"`
	BS   [][]byte             `msgpack:"bs,omitempty"`
}

const (
	typeS    = "S"
	typeN    = "N"
	typeB    = "B"
	typeBool = "BOOL"
	typeNull = "NULL"
	typeL    = "L"
	typeM    = "M"
	typeSS   = "SS"
	typeNS   = "NS"
	typeBS   = "BS"
)

// Encode renders pos as a token.
func Encode(pos Position) (string, error) {
	if len(pos) == 0 {
		return "", errors.New("valnk: cannot encode empty cursor position")
	}
	p, err := fromAttrMap(pos)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.ResetDict(&buf, nil)
	enc.SetSortMapKeys(true)
	err = enc.Encode(envelope{V: version, P: p})
	msgpack.PutEncoder(enc)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode parses a token produced by Encode. Every attribute named in required
// must be present in the decoded position.
func Decode(token string, required ...string) (Position, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformed)
	}
	if len(token) > maxTokenLen {
		return nil, fmt.Errorf("%w: token of %d bytes exceeds %d", ErrMalformed, len(token), maxTokenLen)
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var env envelope
	var r bytes.Reader
	r.Reset(raw)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	dec.DisallowUnknownFields(true)
	err = dec.Decode(&env)
	msgpack.PutDecoder(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.Len())
	}
	if env.V != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, env.V)
	}
	if len(env.P) == 0 {
		return nil, fmt.Errorf("%w: empty position", ErrMalformed)
	}

	pos, err := toAttrMap(env.P)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range required {
		if _, ok := pos[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: missing key attributes %v", ErrMalformed, missing)
	}
	return pos, nil
}

func fromAttrMap(m map[string]types.AttributeValue) (map[string]attrValue, error) {
	out := make(map[string]attrValue, len(m))
	for k, v := range m {
		w, err := fromAttr(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		out[k] = w
	}
	return out, nil
}

func fromAttr(v types.AttributeValue) (attrValue, error) {
	switch v := v.(type) {
	case *types.AttributeValueMemberS:
		return attrValue{T: typeS, S: v.Value}, nil
	case *types.AttributeValueMemberN:
		return attrValue{T: typeN, S: v.Value}, nil
	case *types.AttributeValueMemberB:
		return attrValue{T: typeB, B: v.Value}, nil
	case *types.AttributeValueMemberBOOL:
		return attrValue{T: typeBool, Bool: v.Value}, nil
	case *types.AttributeValueMemberNULL:
		return attrValue{T: typeNull, Bool: v.Value}, nil
	case *types.AttributeValueMemberL:
		list := make([]attrValue, 0, len(v.Value))
		for _, item := range v.Value {
			w, err := fromAttr(item)
			if err != nil {
				return attrValue{}, err
			}
			list = append(list, w)
		}
		return attrValue{T: typeL, L: list}, nil
	case *types.AttributeValueMemberM:
		m, err := fromAttrMap(v.Value)
		if err != nil {
			return attrValue{}, err
		}
		return attrValue{T: typeM, M: m}, nil
	case *types.AttributeValueMemberSS:
		return attrValue{T: typeSS, SS: v.Value}, nil
	case *types.AttributeValueMemberNS:
		return attrValue{T: typeNS, SS: v.Value}, nil
	case *types.AttributeValueMemberBS:
		return attrValue{T: typeBS, BS: v.Value}, nil
	default:
		return attrValue{}, fmt.Errorf("unsupported attribute value %T", v)
	}
}

func toAttrMap(m map[string]attrValue) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(m))
	for k, w := range m {
		v, err := toAttr(w)
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %q: %v", ErrMalformed, k, err)
		}
		out[k] = v
	}
	return out, nil
}

func toAttr(w attrValue) (types.AttributeValue, error) {
	switch w.T {
	case typeS:
		return &types.AttributeValueMemberS{Value: w.S}, nil
	case typeN:
		if w.S == "" {
			return nil, errors.New("empty number")
		}
		return &types.AttributeValueMemberN{Value: w.S}, nil
	case typeB:
		return &types.AttributeValueMemberB{Value: w.B}, nil
	case typeBool:
		return &types.AttributeValueMemberBOOL{Value: w.Bool}, nil
	case typeNull:
		return &types.AttributeValueMemberNULL{Value: w.Bool}, nil
	case typeL:
		list := make([]types.AttributeValue, 0, len(w.L))
		for _, item := range w.L {
			v, err := toAttr(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case typeM:
		m := make(map[string]types.AttributeValue, len(w.M))
		for k, item := range w.M {
			v, err := toAttr(item)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case typeSS:
		return &types.AttributeValueMemberSS{Value: w.SS}, nil
	case typeNS:
		return &types.AttributeValueMemberNS{Value: w.SS}, nil
	case typeBS:
		return &types.AttributeValueMemberBS{Value: w.BS}, nil
	default:
		return nil, fmt.Errorf("unknown value type %q", w.T)
	}
}
