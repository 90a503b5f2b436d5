package types

import "encoding/json"

// Optional 表示一个可能缺失的值。
// 缺失与"提取到的值恰好等于 Not Found"是两种不同的状态，只有在展示层才会被合并。
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some 构造一个存在的值
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None 构造一个缺失的值
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get 返回值以及是否存在
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// OrElse 在值缺失时返回 fallback
func (o Optional[T]) OrElse(fallback T) T {
	if !o.Valid {
		return fallback
	}
	return o.Value
}

// MarshalJSON 缺失时编码为 null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON null 解码为缺失
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
