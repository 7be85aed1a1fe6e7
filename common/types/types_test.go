// Copyright 2018 Google LLC
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

package types

import (
	"math"
	"testing"

	"github.com/exprcel/cel/common/types/ref"
	"github.com/stretchr/testify/assert"
)

func TestIntOverflow(t *testing.T) {
	max := Int(math.MaxInt64)
	result := max.Add(IntOne)
	err, ok := MaybeErr(result)
	assert.True(t, ok)
	assert.Equal(t, ErrOverflow, err.Kind)
}

func TestIntDivideByZero(t *testing.T) {
	result := IntOne.Divide(IntZero)
	err, ok := MaybeErr(result)
	assert.True(t, ok)
	assert.Equal(t, ErrDivisionByZero, err.Kind)
}

func TestDoubleNaNCompare(t *testing.T) {
	nan := Double(math.NaN())
	one := Double(1)
	_, ok := MaybeErr(nan.Compare(one))
	assert.True(t, ok, "comparing NaN should yield an error, not an ordering")
}

func TestDoubleNaNEqualityIsFalse(t *testing.T) {
	nan := Double(math.NaN())
	eq := nan.Equal(nan)
	b, ok := eq.(Bool)
	assert.True(t, ok)
	assert.False(t, bool(b), "NaN must not equal itself")
}

func TestStringEqualIsExact(t *testing.T) {
	composed := String("\u00e9")   // precomposed e-acute
	decomposed := String("e\u0301") // e followed by a combining acute accent
	eq := composed.Equal(decomposed)
	b, ok := eq.(Bool)
	assert.True(t, ok)
	assert.False(t, bool(b), "canonically equivalent but byte-distinct strings must not compare equal")
}

func TestStringSizeNormalizesToCodepoints(t *testing.T) {
	decomposed := String("e\u0301")
	assert.Equal(t, Int(1), decomposed.Size(), "Size must count the NFC-normalized codepoint length")
}

func TestListAddImmutable(t *testing.T) {
	a := NewList([]ref.Val{IntOne})
	b := NewList([]ref.Val{Int(2)})
	sum := a.Add(b).(*List)
	assert.Equal(t, 1, len(a.elems), "Add must not mutate its receiver")
	assert.Equal(t, 2, len(sum.elems))
}

func TestMapIntegralKeyEquivalence(t *testing.T) {
	m := NewMap()
	require := assert.New(t)
	require.NoError(m.Insert(IntOne, String("from-int")))
	v, found := m.Find(Uint(1))
	require.True(found, "uint(1) must find the entry inserted under int(1)")
	require.Equal(String("from-int"), v)
}

func TestStringSizeCountsCodePoints(t *testing.T) {
	s := String("héllo")
	size, ok := s.Size().(Int)
	assert.True(t, ok)
	assert.Equal(t, Int(5), size)
}

func TestOptionalOrValue(t *testing.T) {
	assert.Equal(t, Int(1), NewOptional(IntOne).OrValue(Int(2)))
	assert.Equal(t, Int(2), OptionalNone.OrValue(Int(2)))
}
