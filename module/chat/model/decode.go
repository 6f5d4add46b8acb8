package model

import (
	"github.com/mitchellh/mapstructure"

	"PHistory/tools/errs"
)

// DecodeInto 将弱类型 map 解到任意线格式结构体，字段读取使用 `json` tag。
// 数字宽松转换（float64 -> int64 等），同步层解出的 JSON map 直接可用。
func DecodeInto[T any](m map[string]any) (*T, error) {
	if m == nil {
		return nil, errs.NewCodeError(errs.CodeDecodeFailed, "nil payload map")
	}
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, errs.NewCodeError(errs.CodeDecodeFailed, "decode payload").WithDetail(err.Error())
	}
	return &out, nil
}
