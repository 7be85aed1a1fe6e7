// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ext

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/exprcel/cel/cel"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

// jsonAdapter converts decoded JSON values (map[string]interface{},
// []interface{}, float64, string, bool, nil) into ref.Val, reusing the
// registry's reflection-based conversion rather than a bespoke walker.
var jsonAdapter = types.NewRegistry()

// Encoders returns a cel.EnvOption configuring string/byte/object encoding
// functions: base64.encode/decode, base16.encode/decode, and
// json.encode/decode.
//
//	base64.decode(<string>) -> <string>
//	base64.encode(<string>) -> <string>
//	base64.encode(<bytes>) -> <string>
//	base16.decode(<string>) -> <bytes>
//	base16.encode(<bytes>) -> <string>
//	json.decode(<string>) -> <dyn>
//	json.encode(<dyn>) -> <string>
func Encoders() cel.EnvOption {
	return cel.Lib(encoderLib{})
}

type encoderLib struct{}

func (encoderLib) LibraryName() string { return "cel.lib.ext.encoders" }

func (encoderLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("base64.decode",
			cel.Overload("base64_decode_string", []*types.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(base64Decode))),
		cel.Function("base64.encode",
			cel.Overload("base64_encode_string", []*types.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					return types.String(base64.StdEncoding.EncodeToString([]byte(val.(types.String))))
				})),
			cel.Overload("base64_encode_bytes", []*types.Type{cel.BytesType}, cel.StringType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					return types.String(base64.StdEncoding.EncodeToString(val.(types.Bytes)))
				}))),
		cel.Function("base16.decode",
			cel.Overload("base16_decode_string", []*types.Type{cel.StringType}, cel.BytesType,
				cel.UnaryBinding(base16Decode))),
		cel.Function("base16.encode",
			cel.Overload("base16_encode_bytes", []*types.Type{cel.BytesType}, cel.StringType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					return types.String(hex.EncodeToString(val.(types.Bytes)))
				}))),
		cel.Function("json.decode",
			cel.Overload("json_decode_string", []*types.Type{cel.StringType}, cel.DynType,
				cel.UnaryBinding(jsonDecode))),
		cel.Function("json.encode",
			cel.Overload("json_encode_dyn", []*types.Type{cel.DynType}, cel.StringType,
				cel.UnaryBinding(jsonEncode))),
	}
}

func (encoderLib) ProgramOptions() []cel.ProgramOption { return nil }

func base64Decode(val ref.Val) ref.Val {
	decoded, err := base64.StdEncoding.DecodeString(string(val.(types.String)))
	if err != nil {
		return types.NewErrKind(types.ErrInvalidArgument, "base64.decode: %v", err)
	}
	return types.String(decoded)
}

func base16Decode(val ref.Val) ref.Val {
	decoded, err := hex.DecodeString(string(val.(types.String)))
	if err != nil {
		return types.NewErrKind(types.ErrInvalidArgument, "base16.decode: %v", err)
	}
	return types.Bytes(decoded)
}

func jsonDecode(val ref.Val) ref.Val {
	var decoded interface{}
	if err := json.Unmarshal([]byte(val.(types.String)), &decoded); err != nil {
		return types.NewErrKind(types.ErrInvalidArgument, "json.decode: %v", err)
	}
	return jsonAdapter.NativeToValue(decoded)
}

func jsonEncode(val ref.Val) ref.Val {
	native, err := toJSONNative(val)
	if err != nil {
		return types.NewErrKind(types.ErrInvalidArgument, "json.encode: %v", err)
	}
	out, err := json.Marshal(native)
	if err != nil {
		return types.NewErrKind(types.ErrInvalidArgument, "json.encode: %v", err)
	}
	return types.String(out)
}

// toJSONNative recurses through a ref.Val tree producing encoding/json
// compatible Go values, since *types.Map's own Value() keys by
// interface{} rather than string and so cannot be marshaled directly.
func toJSONNative(val ref.Val) (interface{}, error) {
	switch v := val.(type) {
	case types.Null:
		return nil, nil
	case types.Bool:
		return bool(v), nil
	case types.Int:
		return int64(v), nil
	case types.Uint:
		return uint64(v), nil
	case types.Double:
		return float64(v), nil
	case types.String:
		return string(v), nil
	case types.Bytes:
		return []byte(v), nil
	case *types.List:
		n := int64(v.Size().(types.Int))
		out := make([]interface{}, n)
		for i := int64(0); i < n; i++ {
			elem, err := toJSONNative(v.Get(types.Int(i)))
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	case *types.Map:
		out := make(map[string]interface{}, int64(v.Size().(types.Int)))
		for it := v.Iterator(); it.HasNext() == types.True; {
			k := it.Next()
			key, ok := k.(types.String)
			if !ok {
				return nil, fmt.Errorf("json.encode: non-string map key: %v", k.Type().TypeName())
			}
			elem, err := toJSONNative(v.Get(k))
			if err != nil {
				return nil, err
			}
			out[string(key)] = elem
		}
		return out, nil
	default:
		return nil, fmt.Errorf("json.encode: unsupported type: %v", val.Type().TypeName())
	}
}
