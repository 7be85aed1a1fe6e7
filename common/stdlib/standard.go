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

// Package stdlib declares the standard library of operators, type
// conversions, and member functions built into every CEL environment
// unless explicitly subsetted out (spec §4's `stdlib` configuration).
package stdlib

import (
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/functions"
	"github.com/exprcel/cel/common/overloads"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
	"github.com/exprcel/cel/common/types/traits"
	"github.com/exprcel/cel/operators"
)

var (
	stdFunctions []*decls.FunctionDecl
	stdTypes     []*decls.VariableDecl
)

func init() {
	paramA := types.NewTypeParamType("A")
	paramB := types.NewTypeParamType("B")
	listOfA := types.NewListType(paramA)
	mapOfAB := types.NewMapType(paramA, paramB)

	stdTypes = []*decls.VariableDecl{
		typeVariable(types.BoolType),
		typeVariable(types.BytesType),
		typeVariable(types.DoubleType),
		typeVariable(types.DurationType),
		typeVariable(types.IntType),
		typeVariable(listOfA),
		typeVariable(mapOfAB),
		typeVariable(types.NullType),
		typeVariable(types.StringType),
		typeVariable(types.TimestampType),
		typeVariable(types.TypeTypeMeta),
		typeVariable(types.UintType),
	}

	stdFunctions = []*decls.FunctionDecl{
		// Logical operators, special-cased by the interpreter for
		// short-circuiting. The singleton binding keeps an extension
		// library from silently overriding operator behavior.
		function(operators.Conditional,
			decls.Overload(overloads.Conditional, argTypes(types.BoolType, paramA, paramA), paramA,
				decls.OverloadIsNonStrict()),
			decls.SingletonFunctionBinding(noFunctionOverride)),
		function(operators.LogicalAnd,
			decls.Overload(overloads.LogicalAnd, argTypes(types.BoolType, types.BoolType), types.BoolType,
				decls.OverloadIsNonStrict()),
			decls.SingletonBinaryBinding(noBinaryOverride)),
		function(operators.LogicalOr,
			decls.Overload(overloads.LogicalOr, argTypes(types.BoolType, types.BoolType), types.BoolType,
				decls.OverloadIsNonStrict()),
			decls.SingletonBinaryBinding(noBinaryOverride)),
		function(operators.LogicalNot,
			decls.Overload(overloads.LogicalNot, argTypes(types.BoolType), types.BoolType),
			decls.SingletonUnaryBinding(func(val ref.Val) ref.Val {
				b, ok := val.(types.Bool)
				if !ok {
					return types.MaybeNoSuchOverloadErr(val)
				}
				return b.Negate()
			})),

		// Comprehension short-circuiting helper: folds a non-bool
		// accumulator (an error or unknown) to true so `all`/`exists`
		// evaluation keeps going instead of aborting on it directly.
		function(operators.NotStrictlyFalse,
			decls.Overload(overloads.NotStrictlyFalse, argTypes(types.BoolType), types.BoolType,
				decls.OverloadIsNonStrict(),
				decls.UnaryBinding(notStrictlyFalse))),
		function(operators.OldNotStrictlyFalse,
			decls.DisableDeclaration(true),
			decls.Overload(overloads.OldNotStrictlyFalse, argTypes(types.BoolType), types.BoolType,
				decls.OverloadIsNonStrict(),
				decls.UnaryBinding(notStrictlyFalse))),

		// Equality, special-cased by the interpreter.
		function(operators.Equals,
			decls.Overload(overloads.Equals, argTypes(paramA, paramA), types.BoolType),
			decls.SingletonBinaryBinding(noBinaryOverride)),
		function(operators.NotEquals,
			decls.Overload(overloads.NotEquals, argTypes(paramA, paramA), types.BoolType),
			decls.SingletonBinaryBinding(noBinaryOverride)),

		// Arithmetic.
		function(operators.Add,
			decls.Overload(overloads.AddBytes, argTypes(types.BytesType, types.BytesType), types.BytesType),
			decls.Overload(overloads.AddDouble, argTypes(types.DoubleType, types.DoubleType), types.DoubleType),
			decls.Overload(overloads.AddDurationDuration, argTypes(types.DurationType, types.DurationType), types.DurationType),
			decls.Overload(overloads.AddDurationTimestamp, argTypes(types.DurationType, types.TimestampType), types.TimestampType),
			decls.Overload(overloads.AddTimestampDuration, argTypes(types.TimestampType, types.DurationType), types.TimestampType),
			decls.Overload(overloads.AddInt64, argTypes(types.IntType, types.IntType), types.IntType),
			decls.Overload(overloads.AddList, argTypes(listOfA, listOfA), listOfA),
			decls.Overload(overloads.AddString, argTypes(types.StringType, types.StringType), types.StringType),
			decls.Overload(overloads.AddUint64, argTypes(types.UintType, types.UintType), types.UintType),
			decls.SingletonBinaryBinding(func(lhs, rhs ref.Val) ref.Val {
				adder, ok := lhs.(traits.Adder)
				if !ok {
					return types.MaybeNoSuchOverloadErr(lhs)
				}
				return adder.Add(rhs)
			})),
		function(operators.Divide,
			decls.Overload(overloads.DivideDouble, argTypes(types.DoubleType, types.DoubleType), types.DoubleType),
			decls.Overload(overloads.DivideInt64, argTypes(types.IntType, types.IntType), types.IntType),
			decls.Overload(overloads.DivideUint64, argTypes(types.UintType, types.UintType), types.UintType),
			decls.SingletonBinaryBinding(func(lhs, rhs ref.Val) ref.Val {
				divider, ok := lhs.(traits.Divider)
				if !ok {
					return types.MaybeNoSuchOverloadErr(lhs)
				}
				return divider.Divide(rhs)
			})),
		function(operators.Modulo,
			decls.Overload(overloads.ModuloInt64, argTypes(types.IntType, types.IntType), types.IntType),
			decls.Overload(overloads.ModuloUint64, argTypes(types.UintType, types.UintType), types.UintType),
			decls.SingletonBinaryBinding(func(lhs, rhs ref.Val) ref.Val {
				modder, ok := lhs.(traits.Modder)
				if !ok {
					return types.MaybeNoSuchOverloadErr(lhs)
				}
				return modder.Modulo(rhs)
			})),
		function(operators.Multiply,
			decls.Overload(overloads.MultiplyDouble, argTypes(types.DoubleType, types.DoubleType), types.DoubleType),
			decls.Overload(overloads.MultiplyInt64, argTypes(types.IntType, types.IntType), types.IntType),
			decls.Overload(overloads.MultiplyUint64, argTypes(types.UintType, types.UintType), types.UintType),
			decls.SingletonBinaryBinding(func(lhs, rhs ref.Val) ref.Val {
				multiplier, ok := lhs.(traits.Multiplier)
				if !ok {
					return types.MaybeNoSuchOverloadErr(lhs)
				}
				return multiplier.Multiply(rhs)
			})),
		function(operators.Negate,
			decls.Overload(overloads.NegateDouble, argTypes(types.DoubleType), types.DoubleType),
			decls.Overload(overloads.NegateInt64, argTypes(types.IntType), types.IntType),
			decls.SingletonUnaryBinding(func(val ref.Val) ref.Val {
				if types.IsBool(val) {
					return types.MaybeNoSuchOverloadErr(val)
				}
				negater, ok := val.(traits.Negater)
				if !ok {
					return types.MaybeNoSuchOverloadErr(val)
				}
				return negater.Negate()
			})),
		function(operators.Subtract,
			decls.Overload(overloads.SubtractDouble, argTypes(types.DoubleType, types.DoubleType), types.DoubleType),
			decls.Overload(overloads.SubtractDurationDuration, argTypes(types.DurationType, types.DurationType), types.DurationType),
			decls.Overload(overloads.SubtractInt64, argTypes(types.IntType, types.IntType), types.IntType),
			decls.Overload(overloads.SubtractTimestampDuration, argTypes(types.TimestampType, types.DurationType), types.TimestampType),
			decls.Overload(overloads.SubtractTimestampTimestamp, argTypes(types.TimestampType, types.TimestampType), types.DurationType),
			decls.Overload(overloads.SubtractUint64, argTypes(types.UintType, types.UintType), types.UintType),
			decls.SingletonBinaryBinding(func(lhs, rhs ref.Val) ref.Val {
				subtractor, ok := lhs.(traits.Subtractor)
				if !ok {
					return types.MaybeNoSuchOverloadErr(lhs)
				}
				return subtractor.Subtract(rhs)
			})),

		// Relations. Each shares the same fourteen operand-type-pair
		// overloads and dispatches through traits.Comparer, differing
		// only in how Compare's {-1,0,1} result maps to a bool outcome.
		function(operators.Less, comparisonOpts(compareLess,
			overloads.LessBool, overloads.LessInt64, overloads.LessInt64Double,
			overloads.LessInt64Uint64, overloads.LessUint64, overloads.LessUint64Double, overloads.LessUint64Int64,
			overloads.LessDouble, overloads.LessDoubleInt64, overloads.LessDoubleUint64, overloads.LessString,
			overloads.LessBytes, overloads.LessTimestamp, overloads.LessDuration)...,
		),
		function(operators.LessEquals, comparisonOpts(compareLessEquals,
			overloads.LessEqualsBool, overloads.LessEqualsInt64,
			overloads.LessEqualsInt64Double, overloads.LessEqualsInt64Uint64, overloads.LessEqualsUint64,
			overloads.LessEqualsUint64Double, overloads.LessEqualsUint64Int64, overloads.LessEqualsDouble,
			overloads.LessEqualsDoubleInt64, overloads.LessEqualsDoubleUint64, overloads.LessEqualsString,
			overloads.LessEqualsBytes, overloads.LessEqualsTimestamp, overloads.LessEqualsDuration)...,
		),
		function(operators.Greater, comparisonOpts(compareGreater,
			overloads.GreaterBool, overloads.GreaterInt64,
			overloads.GreaterInt64Double, overloads.GreaterInt64Uint64, overloads.GreaterUint64,
			overloads.GreaterUint64Double, overloads.GreaterUint64Int64, overloads.GreaterDouble,
			overloads.GreaterDoubleInt64, overloads.GreaterDoubleUint64, overloads.GreaterString,
			overloads.GreaterBytes, overloads.GreaterTimestamp, overloads.GreaterDuration)...,
		),
		function(operators.GreaterEquals, comparisonOpts(compareGreaterEquals,
			overloads.GreaterEqualsBool, overloads.GreaterEqualsInt64,
			overloads.GreaterEqualsInt64Double, overloads.GreaterEqualsInt64Uint64, overloads.GreaterEqualsUint64,
			overloads.GreaterEqualsUint64Double, overloads.GreaterEqualsUint64Int64, overloads.GreaterEqualsDouble,
			overloads.GreaterEqualsDoubleInt64, overloads.GreaterEqualsDoubleUint64, overloads.GreaterEqualsString,
			overloads.GreaterEqualsBytes, overloads.GreaterEqualsTimestamp, overloads.GreaterEqualsDuration)...,
		),

		// Indexing.
		function(operators.Index,
			decls.Overload(overloads.IndexList, argTypes(listOfA, types.IntType), paramA),
			decls.Overload(overloads.IndexMap, argTypes(mapOfAB, paramA), paramB),
			decls.SingletonBinaryBinding(func(lhs, rhs ref.Val) ref.Val {
				indexer, ok := lhs.(traits.Indexer)
				if !ok {
					return types.MaybeNoSuchOverloadErr(lhs)
				}
				return indexer.Get(rhs)
			})),

		// Collections.
		function(operators.In,
			decls.Overload(overloads.InList, argTypes(paramA, listOfA), types.BoolType),
			decls.Overload(overloads.InMap, argTypes(paramA, mapOfAB), types.BoolType),
			decls.SingletonBinaryBinding(inAggregate)),
		function(operators.OldIn,
			decls.DisableDeclaration(true),
			decls.Overload(overloads.InList, argTypes(paramA, listOfA), types.BoolType),
			decls.Overload(overloads.InMap, argTypes(paramA, mapOfAB), types.BoolType),
			decls.SingletonBinaryBinding(inAggregate)),
		function(overloads.DeprecatedIn,
			decls.DisableDeclaration(true),
			decls.Overload(overloads.InList, argTypes(paramA, listOfA), types.BoolType),
			decls.Overload(overloads.InMap, argTypes(paramA, mapOfAB), types.BoolType),
			decls.SingletonBinaryBinding(inAggregate)),
		function(overloads.Size,
			decls.Overload(overloads.SizeBytes, argTypes(types.BytesType), types.IntType),
			decls.MemberOverload(overloads.SizeBytesInst, argTypes(types.BytesType), types.IntType),
			decls.Overload(overloads.SizeList, argTypes(listOfA), types.IntType),
			decls.MemberOverload(overloads.SizeListInst, argTypes(listOfA), types.IntType),
			decls.Overload(overloads.SizeMap, argTypes(mapOfAB), types.IntType),
			decls.MemberOverload(overloads.SizeMapInst, argTypes(mapOfAB), types.IntType),
			decls.Overload(overloads.SizeString, argTypes(types.StringType), types.IntType),
			decls.MemberOverload(overloads.SizeStringInst, argTypes(types.StringType), types.IntType),
			decls.SingletonUnaryBinding(func(val ref.Val) ref.Val {
				sizer, ok := val.(traits.Sizer)
				if !ok {
					return types.MaybeNoSuchOverloadErr(val)
				}
				return sizer.Size()
			})),

		// Type conversions.
		function(overloads.TypeConvertType,
			decls.Overload(overloads.TypeConvertType, argTypes(paramA), types.NewTypeType(paramA)),
			decls.SingletonUnaryBinding(convertToType(types.TypeTypeMeta))),

		function(overloads.TypeConvertBool,
			decls.Overload(overloads.BoolToBool, argTypes(types.BoolType), types.BoolType, decls.UnaryBinding(identity)),
			decls.Overload(overloads.StringToBool, argTypes(types.StringType), types.BoolType, decls.UnaryBinding(convertToType(types.BoolType)))),

		function(overloads.TypeConvertBytes,
			decls.Overload(overloads.BytesToBytes, argTypes(types.BytesType), types.BytesType, decls.UnaryBinding(identity)),
			decls.Overload(overloads.StringToBytes, argTypes(types.StringType), types.BytesType, decls.UnaryBinding(convertToType(types.BytesType)))),

		function(overloads.TypeConvertDouble,
			decls.Overload(overloads.DoubleToDouble, argTypes(types.DoubleType), types.DoubleType, decls.UnaryBinding(identity)),
			decls.Overload(overloads.IntToDouble, argTypes(types.IntType), types.DoubleType, decls.UnaryBinding(convertToType(types.DoubleType))),
			decls.Overload(overloads.StringToDouble, argTypes(types.StringType), types.DoubleType, decls.UnaryBinding(convertToType(types.DoubleType))),
			decls.Overload(overloads.UintToDouble, argTypes(types.UintType), types.DoubleType, decls.UnaryBinding(convertToType(types.DoubleType)))),

		function(overloads.TypeConvertDuration,
			decls.Overload(overloads.DurationToDuration, argTypes(types.DurationType), types.DurationType, decls.UnaryBinding(identity)),
			decls.Overload(overloads.IntToDuration, argTypes(types.IntType), types.DurationType, decls.UnaryBinding(convertToType(types.DurationType))),
			decls.Overload(overloads.StringToDuration, argTypes(types.StringType), types.DurationType, decls.UnaryBinding(convertToType(types.DurationType)))),

		function(overloads.TypeConvertDyn,
			decls.Overload(overloads.ToDyn, argTypes(paramA), types.DynType),
			decls.SingletonUnaryBinding(identity)),

		function(overloads.TypeConvertInt,
			decls.Overload(overloads.IntToInt, argTypes(types.IntType), types.IntType, decls.UnaryBinding(identity)),
			decls.Overload(overloads.DoubleToInt, argTypes(types.DoubleType), types.IntType, decls.UnaryBinding(convertToType(types.IntType))),
			decls.Overload(overloads.DurationToInt, argTypes(types.DurationType), types.IntType, decls.UnaryBinding(convertToType(types.IntType))),
			decls.Overload(overloads.StringToInt, argTypes(types.StringType), types.IntType, decls.UnaryBinding(convertToType(types.IntType))),
			decls.Overload(overloads.TimestampToInt, argTypes(types.TimestampType), types.IntType, decls.UnaryBinding(convertToType(types.IntType))),
			decls.Overload(overloads.UintToInt, argTypes(types.UintType), types.IntType, decls.UnaryBinding(convertToType(types.IntType)))),

		function(overloads.TypeConvertString,
			decls.Overload(overloads.StringToString, argTypes(types.StringType), types.StringType, decls.UnaryBinding(identity)),
			decls.Overload(overloads.BoolToString, argTypes(types.BoolType), types.StringType, decls.UnaryBinding(convertToType(types.StringType))),
			decls.Overload(overloads.BytesToString, argTypes(types.BytesType), types.StringType, decls.UnaryBinding(convertToType(types.StringType))),
			decls.Overload(overloads.DoubleToString, argTypes(types.DoubleType), types.StringType, decls.UnaryBinding(convertToType(types.StringType))),
			decls.Overload(overloads.DurationToString, argTypes(types.DurationType), types.StringType, decls.UnaryBinding(convertToType(types.StringType))),
			decls.Overload(overloads.IntToString, argTypes(types.IntType), types.StringType, decls.UnaryBinding(convertToType(types.StringType))),
			decls.Overload(overloads.TimestampToString, argTypes(types.TimestampType), types.StringType, decls.UnaryBinding(convertToType(types.StringType))),
			decls.Overload(overloads.UintToString, argTypes(types.UintType), types.StringType, decls.UnaryBinding(convertToType(types.StringType)))),

		function(overloads.TypeConvertTimestamp,
			decls.Overload(overloads.TimestampToTimestamp, argTypes(types.TimestampType), types.TimestampType, decls.UnaryBinding(identity)),
			decls.Overload(overloads.IntToTimestamp, argTypes(types.IntType), types.TimestampType, decls.UnaryBinding(convertToType(types.TimestampType))),
			decls.Overload(overloads.StringToTimestamp, argTypes(types.StringType), types.TimestampType, decls.UnaryBinding(convertToType(types.TimestampType)))),

		function(overloads.TypeConvertUint,
			decls.Overload(overloads.UintToUint, argTypes(types.UintType), types.UintType, decls.UnaryBinding(identity)),
			decls.Overload(overloads.DoubleToUint, argTypes(types.DoubleType), types.UintType, decls.UnaryBinding(convertToType(types.UintType))),
			decls.Overload(overloads.IntToUint, argTypes(types.IntType), types.UintType, decls.UnaryBinding(convertToType(types.UintType))),
			decls.Overload(overloads.StringToUint, argTypes(types.StringType), types.UintType, decls.UnaryBinding(convertToType(types.UintType)))),

		// String functions.
		function(overloads.Contains,
			decls.MemberOverload(overloads.ContainsString, argTypes(types.StringType, types.StringType), types.BoolType,
				decls.BinaryBinding(types.StringContains)),
			decls.DisableTypeGuards(true)),
		function(overloads.EndsWith,
			decls.MemberOverload(overloads.EndsWithString, argTypes(types.StringType, types.StringType), types.BoolType,
				decls.BinaryBinding(types.StringEndsWith)),
			decls.DisableTypeGuards(true)),
		function(overloads.StartsWith,
			decls.MemberOverload(overloads.StartsWithString, argTypes(types.StringType, types.StringType), types.BoolType,
				decls.BinaryBinding(types.StringStartsWith)),
			decls.DisableTypeGuards(true)),
		function(overloads.Matches,
			decls.Overload(overloads.Matches, argTypes(types.StringType, types.StringType), types.BoolType),
			decls.MemberOverload(overloads.MatchesString, argTypes(types.StringType, types.StringType), types.BoolType),
			decls.SingletonBinaryBinding(func(str, pat ref.Val) ref.Val {
				matcher, ok := str.(traits.Matcher)
				if !ok {
					return types.MaybeNoSuchOverloadErr(str)
				}
				return matcher.Match(pat)
			})),

		// Timestamp/duration component accessors.
		function(overloads.TimeGetFullYear,
			decls.MemberOverload(overloads.TimestampToYear, argTypes(types.TimestampType), types.IntType),
			decls.MemberOverload(overloads.TimestampToYearWithTz, argTypes(types.TimestampType, types.StringType), types.IntType)),
		function(overloads.TimeGetMonth,
			decls.MemberOverload(overloads.TimestampToMonth, argTypes(types.TimestampType), types.IntType),
			decls.MemberOverload(overloads.TimestampToMonthWithTz, argTypes(types.TimestampType, types.StringType), types.IntType)),
		function(overloads.TimeGetDayOfYear,
			decls.MemberOverload(overloads.TimestampToDayOfYear, argTypes(types.TimestampType), types.IntType),
			decls.MemberOverload(overloads.TimestampToDayOfYearWithTz, argTypes(types.TimestampType, types.StringType), types.IntType)),
		function(overloads.TimeGetDayOfMonth,
			decls.MemberOverload(overloads.TimestampToDayOfMonthZeroBased, argTypes(types.TimestampType), types.IntType),
			decls.MemberOverload(overloads.TimestampToDayOfMonthZeroBasedWithTz, argTypes(types.TimestampType, types.StringType), types.IntType)),
		function(overloads.TimeGetDate,
			decls.MemberOverload(overloads.TimestampToDayOfMonthOneBased, argTypes(types.TimestampType), types.IntType),
			decls.MemberOverload(overloads.TimestampToDayOfMonthOneBasedWithTz, argTypes(types.TimestampType, types.StringType), types.IntType)),
		function(overloads.TimeGetDayOfWeek,
			decls.MemberOverload(overloads.TimestampToDayOfWeek, argTypes(types.TimestampType), types.IntType),
			decls.MemberOverload(overloads.TimestampToDayOfWeekWithTz, argTypes(types.TimestampType, types.StringType), types.IntType)),
		function(overloads.TimeGetHours,
			decls.MemberOverload(overloads.TimestampToHours, argTypes(types.TimestampType), types.IntType),
			decls.MemberOverload(overloads.TimestampToHoursWithTz, argTypes(types.TimestampType, types.StringType), types.IntType),
			decls.MemberOverload(overloads.DurationToHours, argTypes(types.DurationType), types.IntType)),
		function(overloads.TimeGetMinutes,
			decls.MemberOverload(overloads.TimestampToMinutes, argTypes(types.TimestampType), types.IntType),
			decls.MemberOverload(overloads.TimestampToMinutesWithTz, argTypes(types.TimestampType, types.StringType), types.IntType),
			decls.MemberOverload(overloads.DurationToMinutes, argTypes(types.DurationType), types.IntType)),
		function(overloads.TimeGetSeconds,
			decls.MemberOverload(overloads.TimestampToSeconds, argTypes(types.TimestampType), types.IntType),
			decls.MemberOverload(overloads.TimestampToSecondsWithTz, argTypes(types.TimestampType, types.StringType), types.IntType),
			decls.MemberOverload(overloads.DurationToSeconds, argTypes(types.DurationType), types.IntType)),
		function(overloads.TimeGetMilliseconds,
			decls.MemberOverload(overloads.TimestampToMilliseconds, argTypes(types.TimestampType), types.IntType),
			decls.MemberOverload(overloads.TimestampToMillisecondsWithTz, argTypes(types.TimestampType, types.StringType), types.IntType),
			decls.MemberOverload(overloads.DurationToMilliseconds, argTypes(types.DurationType), types.IntType)),
	}
}

// Functions returns the standard library's function declarations.
func Functions() []*decls.FunctionDecl {
	return stdFunctions
}

// Types returns the standard library's well-known type variables.
func Types() []*decls.VariableDecl {
	return stdTypes
}

func typeVariable(t *types.Type) *decls.VariableDecl {
	v, err := decls.NewVariable(t.TypeName(), types.NewTypeType(t))
	if err != nil {
		panic(err)
	}
	return v
}

func notStrictlyFalse(value ref.Val) ref.Val {
	if types.IsBool(value) {
		return value
	}
	return types.True
}

func inAggregate(lhs, rhs ref.Val) ref.Val {
	container, ok := rhs.(traits.Container)
	if !ok {
		return types.ValOrErr(rhs, "no such overload")
	}
	return container.Contains(lhs)
}

func function(name string, opts ...decls.FunctionOpt) *decls.FunctionDecl {
	fn, err := decls.NewFunction(name, opts...)
	if err != nil {
		panic(err)
	}
	return fn
}

func argTypes(args ...*types.Type) []*types.Type {
	return args
}

// comparisonOpts builds the fourteen operand-type-pair overloads shared
// by <, <=, >, and >=, plus a single comparer-trait binding that maps
// Compare's {-1,0,1} result to a bool outcome via resolve.
func comparisonOpts(resolve func(cmp ref.Val) ref.Val, ids ...string) []decls.FunctionOpt {
	argPairs := [][2]*types.Type{
		{types.BoolType, types.BoolType},
		{types.IntType, types.IntType},
		{types.IntType, types.DoubleType},
		{types.IntType, types.UintType},
		{types.UintType, types.UintType},
		{types.UintType, types.DoubleType},
		{types.UintType, types.IntType},
		{types.DoubleType, types.DoubleType},
		{types.DoubleType, types.IntType},
		{types.DoubleType, types.UintType},
		{types.StringType, types.StringType},
		{types.BytesType, types.BytesType},
		{types.TimestampType, types.TimestampType},
		{types.DurationType, types.DurationType},
	}
	opts := make([]decls.FunctionOpt, 0, len(ids)+1)
	for i, id := range ids {
		opts = append(opts, decls.Overload(id, argTypes(argPairs[i][0], argPairs[i][1]), types.BoolType))
	}
	opts = append(opts, decls.SingletonBinaryBinding(func(lhs, rhs ref.Val) ref.Val {
		comparer, ok := lhs.(traits.Comparer)
		if !ok {
			return types.MaybeNoSuchOverloadErr(lhs)
		}
		return resolve(comparer.Compare(rhs))
	}))
	return opts
}

func compareLess(cmp ref.Val) ref.Val {
	if cmp == types.IntNegOne {
		return types.True
	}
	if cmp == types.IntZero || cmp == types.IntOne {
		return types.False
	}
	return cmp
}

func compareLessEquals(cmp ref.Val) ref.Val {
	if cmp == types.IntNegOne || cmp == types.IntZero {
		return types.True
	}
	if cmp == types.IntOne {
		return types.False
	}
	return cmp
}

func compareGreater(cmp ref.Val) ref.Val {
	if cmp == types.IntOne {
		return types.True
	}
	if cmp == types.IntZero || cmp == types.IntNegOne {
		return types.False
	}
	return cmp
}

func compareGreaterEquals(cmp ref.Val) ref.Val {
	if cmp == types.IntOne || cmp == types.IntZero {
		return types.True
	}
	if cmp == types.IntNegOne {
		return types.False
	}
	return cmp
}

func noBinaryOverride(lhs, rhs ref.Val) ref.Val {
	return types.NoSuchOverloadErr()
}

func noFunctionOverride(args ...ref.Val) ref.Val {
	return types.NoSuchOverloadErr()
}

func identity(val ref.Val) ref.Val {
	return val
}

func convertToType(t *types.Type) functions.UnaryOp {
	return func(val ref.Val) ref.Val {
		return val.ConvertToType(t)
	}
}
