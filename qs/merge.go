package qs

import (
	"fmt"
	"sort"
	"strconv"
)

// array is a possibly sparse list. Holes are dropped by compact.
type array struct {
	items  map[int]any
	length int
}

func newArray() *array {
	return &array{items: map[int]any{}}
}

func (a *array) push(v any) {
	a.items[a.length] = v
	a.length++
}

func (a *array) set(i int, v any) {
	a.items[i] = v
	if i >= a.length {
		a.length = i + 1
	}
}

func (a *array) indices() []int {
	idx := make([]int, 0, len(a.items))
	for i := range a.items {
		idx = append(idx, i)
	}

	sort.Ints(idx)

	return idx
}

func (a *array) toObject() map[string]any {
	obj := make(map[string]any, len(a.items))
	for i, v := range a.items {
		obj[strconv.Itoa(i)] = v
	}

	return obj
}

func isObject(v any) bool {
	switch v.(type) {
	case map[string]any, *array:
		return true
	}

	return false
}

// combine concatenates a and b into a new array, flattening either side that
// is itself an array.
func combine(a, b any) *array {
	out := newArray()
	for _, v := range []any{a, b} {
		if arr, ok := v.(*array); ok {
			for _, i := range arr.indices() {
				out.push(arr.items[i])
			}

			continue
		}

		out.push(v)
	}

	return out
}

// merge folds source into target and returns the result, reusing target
// where its shape allows.
func merge(target, source any) any {
	if source == nil || source == "" {
		return target
	}

	if !isObject(source) {
		switch t := target.(type) {
		case *array:
			t.push(source)
			return t
		case map[string]any:
			t[fmt.Sprint(source)] = true
			return t
		}

		return combine(target, source)
	}

	if !isObject(target) {
		return combine(target, source)
	}

	targetArr, targetIsArr := target.(*array)
	if sourceArr, ok := source.(*array); ok && targetIsArr {
		for _, i := range sourceArr.indices() {
			item := sourceArr.items[i]
			existing, ok := targetArr.items[i]
			switch {
			case !ok:
				targetArr.set(i, item)
			case isObject(existing) && isObject(item):
				targetArr.items[i] = merge(existing, item)
			default:
				targetArr.push(item)
			}
		}

		return targetArr
	}

	var dst map[string]any
	if targetIsArr {
		dst = targetArr.toObject()
	} else {
		dst = target.(map[string]any)
	}

	mergeEntry := func(key string, value any) {
		if existing, ok := dst[key]; ok {
			dst[key] = merge(existing, value)
			return
		}

		dst[key] = value
	}

	switch src := source.(type) {
	case *array:
		for _, i := range src.indices() {
			mergeEntry(strconv.Itoa(i), src.items[i])
		}
	case map[string]any:
		for k, v := range src {
			mergeEntry(k, v)
		}
	}

	return dst
}

// compact turns every array into a dense []any.
func compact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = compact(e)
		}

		return t
	case *array:
		out := make([]any, 0, len(t.items))
		for _, i := range t.indices() {
			out = append(out, compact(t.items[i]))
		}

		return out
	}

	return v
}
