/*
 * Ferrite - verifier for the Ferrite typestate intermediate representation
 *
 * Copyright Ferrite contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 * Based on https://github.com/wk8/go-ordered-map, Copyright Jean Rougé
 */

package orderedmap

// OrderedMap is a map that iterates in insertion order.
// The zero value is ready to use.
type OrderedMap[K comparable, V any] struct {
	values map[K]V
	keys   []K
}

// New returns a new OrderedMap with the given capacity hint.
func New[K comparable, V any](size int) *OrderedMap[K, V] {
	return &OrderedMap[K, V]{
		values: make(map[K]V, size),
		keys:   make([]K, 0, size),
	}
}

func (om *OrderedMap[K, V]) ensureInitialized() {
	if om.values != nil {
		return
	}
	om.values = make(map[K]V)
}

// Clear removes all entries from this ordered map.
func (om *OrderedMap[K, V]) Clear() {
	om.keys = om.keys[:0]
	// NOTE: range over map is safe, as it is only used to delete entries
	for key := range om.values { //nolint:maprange
		delete(om.values, key)
	}
}

// Get returns the value associated with the given key.
// The second return value indicates if the key is present in the map.
func (om *OrderedMap[K, V]) Get(key K) (result V, present bool) {
	if om.values == nil {
		return
	}
	result, present = om.values[key]
	return
}

// Contains returns true if the key is present in the map,
// and false otherwise.
func (om *OrderedMap[K, V]) Contains(key K) bool {
	if om.values == nil {
		return false
	}
	_, present := om.values[key]
	return present
}

// Set sets the value for the given key.
// Returns the previous value and whether the key was already present.
func (om *OrderedMap[K, V]) Set(key K, value V) (oldValue V, present bool) {
	om.ensureInitialized()
	oldValue, present = om.values[key]
	if !present {
		om.keys = append(om.keys, key)
	}
	om.values[key] = value
	return
}

// Delete removes the entry for the given key.
// Returns the removed value and whether the key was present.
func (om *OrderedMap[K, V]) Delete(key K) (oldValue V, present bool) {
	if om.values == nil {
		return
	}
	oldValue, present = om.values[key]
	if !present {
		return
	}
	delete(om.values, key)
	for i, existing := range om.keys {
		if existing == key {
			om.keys = append(om.keys[:i], om.keys[i+1:]...)
			break
		}
	}
	return
}

// Len returns the number of entries in the map.
func (om *OrderedMap[K, V]) Len() int {
	if om == nil {
		return 0
	}
	return len(om.keys)
}

// Keys returns the keys in insertion order.
// The returned slice must not be modified.
func (om *OrderedMap[K, V]) Keys() []K {
	if om == nil {
		return nil
	}
	return om.keys
}

// Foreach iterates over the entries of the map in insertion order,
// and invokes the given function for each entry.
func (om *OrderedMap[K, V]) Foreach(f func(key K, value V)) {
	if om == nil {
		return
	}
	for _, key := range om.keys {
		f(key, om.values[key])
	}
}

// ForeachWithError iterates over the entries of the map in insertion order,
// and invokes the given function for each entry.
// If the function returns an error, iteration stops and the error is returned.
func (om *OrderedMap[K, V]) ForeachWithError(f func(key K, value V) error) error {
	if om == nil {
		return nil
	}
	for _, key := range om.keys {
		err := f(key, om.values[key])
		if err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a shallow copy of the map.
func (om *OrderedMap[K, V]) Clone() *OrderedMap[K, V] {
	if om == nil {
		return nil
	}
	clone := New[K, V](om.Len())
	for _, key := range om.keys {
		clone.Set(key, om.values[key])
	}
	return clone
}
