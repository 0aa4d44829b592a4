// Copyright 2025 Lily Team
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

package settings

// Merge folds partials left to right, later entries winning field by field.
// Nested maps merge per key, lists and scalars are replaced, nil entries and
// nil values contribute nothing. Keys unknown to the namespace schema are
// dropped. The inputs are not modified.
func Merge(ns Namespace, partials []Partial) Partial {
	schema := schemas[ns]
	out := Partial{}
	for _, p := range partials {
		for k, v := range p {
			if schema != nil {
				if _, ok := schema.Lookup(k); !ok {
					continue
				}
			}
			mergeValue(out, k, v)
		}
	}
	return out
}

func mergeValue(dst map[string]any, key string, v any) {
	if v == nil {
		return
	}
	src, ok := v.(map[string]any)
	if !ok {
		dst[key] = cloneValue(v)
		return
	}
	existing, ok := dst[key].(map[string]any)
	if !ok {
		existing = make(map[string]any, len(src))
		dst[key] = existing
	}
	for k, val := range src {
		mergeValue(existing, k, val)
	}
}
