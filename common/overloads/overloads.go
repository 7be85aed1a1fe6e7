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

// Package overloads holds the canonical overload id for every standard
// library function/operand-type combination, following the
// `<targetType>_<func>_<argType1>_<argType2>…` naming convention the
// checker and interpreter use to key dispatch tables and the optimizer
// uses to refer to an overload by id.
package overloads

// Boolean operators.
const (
	Conditional         = "conditional"
	LogicalAnd          = "logical_and"
	LogicalOr           = "logical_or"
	LogicalNot          = "logical_not"
	NotStrictlyFalse    = "not_strictly_false"
	OldNotStrictlyFalse = "not_strictly_false_deprecated"
)

// Equality.
const (
	Equals    = "equals"
	NotEquals = "not_equals"
)

// Arithmetic addition.
const (
	AddBytes             = "add_bytes_bytes"
	AddDouble            = "add_double_double"
	AddDurationDuration  = "add_duration_duration"
	AddDurationTimestamp = "add_duration_timestamp"
	AddTimestampDuration = "add_timestamp_duration"
	AddInt64             = "add_int64_int64"
	AddList              = "add_list_list"
	AddString            = "add_string_string"
	AddUint64            = "add_uint64_uint64"
)

// Arithmetic subtraction.
const (
	SubtractDouble             = "subtract_double_double"
	SubtractDurationDuration   = "subtract_duration_duration"
	SubtractInt64              = "subtract_int64_int64"
	SubtractTimestampDuration  = "subtract_timestamp_duration"
	SubtractTimestampTimestamp = "subtract_timestamp_timestamp"
	SubtractUint64             = "subtract_uint64_uint64"
)

// Arithmetic multiplication/division/modulo/negation.
const (
	MultiplyDouble = "multiply_double_double"
	MultiplyInt64  = "multiply_int64_int64"
	MultiplyUint64 = "multiply_uint64_uint64"
	DivideDouble   = "divide_double_double"
	DivideInt64    = "divide_int64_int64"
	DivideUint64   = "divide_uint64_uint64"
	ModuloInt64    = "modulo_int64_int64"
	ModuloUint64   = "modulo_uint64_uint64"
	NegateDouble   = "negate_double"
	NegateInt64    = "negate_int64"
)

// Relational comparisons, one overload id per operand-type pairing.
const (
	LessBool           = "less_bool_bool"
	LessInt64          = "less_int64_int64"
	LessInt64Double    = "less_int64_double"
	LessInt64Uint64    = "less_int64_uint64"
	LessUint64         = "less_uint64_uint64"
	LessUint64Double   = "less_uint64_double"
	LessUint64Int64    = "less_uint64_int64"
	LessDouble         = "less_double_double"
	LessDoubleInt64    = "less_double_int64"
	LessDoubleUint64   = "less_double_uint64"
	LessString         = "less_string_string"
	LessBytes          = "less_bytes_bytes"
	LessTimestamp      = "less_timestamp_timestamp"
	LessDuration       = "less_duration_duration"

	LessEqualsBool         = "less_equals_bool_bool"
	LessEqualsInt64        = "less_equals_int64_int64"
	LessEqualsInt64Double  = "less_equals_int64_double"
	LessEqualsInt64Uint64  = "less_equals_int64_uint64"
	LessEqualsUint64       = "less_equals_uint64_uint64"
	LessEqualsUint64Double = "less_equals_uint64_double"
	LessEqualsUint64Int64  = "less_equals_uint64_int64"
	LessEqualsDouble       = "less_equals_double_double"
	LessEqualsDoubleInt64  = "less_equals_double_int64"
	LessEqualsDoubleUint64 = "less_equals_double_uint64"
	LessEqualsString       = "less_equals_string_string"
	LessEqualsBytes        = "less_equals_bytes_bytes"
	LessEqualsTimestamp    = "less_equals_timestamp_timestamp"
	LessEqualsDuration     = "less_equals_duration_duration"

	GreaterBool           = "greater_bool_bool"
	GreaterInt64          = "greater_int64_int64"
	GreaterInt64Double    = "greater_int64_double"
	GreaterInt64Uint64    = "greater_int64_uint64"
	GreaterUint64         = "greater_uint64_uint64"
	GreaterUint64Double   = "greater_uint64_double"
	GreaterUint64Int64    = "greater_uint64_int64"
	GreaterDouble         = "greater_double_double"
	GreaterDoubleInt64    = "greater_double_int64"
	GreaterDoubleUint64   = "greater_double_uint64"
	GreaterString         = "greater_string_string"
	GreaterBytes          = "greater_bytes_bytes"
	GreaterTimestamp      = "greater_timestamp_timestamp"
	GreaterDuration       = "greater_duration_duration"

	GreaterEqualsBool         = "greater_equals_bool_bool"
	GreaterEqualsInt64        = "greater_equals_int64_int64"
	GreaterEqualsInt64Double  = "greater_equals_int64_double"
	GreaterEqualsInt64Uint64  = "greater_equals_int64_uint64"
	GreaterEqualsUint64       = "greater_equals_uint64_uint64"
	GreaterEqualsUint64Double = "greater_equals_uint64_double"
	GreaterEqualsUint64Int64  = "greater_equals_uint64_int64"
	GreaterEqualsDouble       = "greater_equals_double_double"
	GreaterEqualsDoubleInt64  = "greater_equals_double_int64"
	GreaterEqualsDoubleUint64 = "greater_equals_double_uint64"
	GreaterEqualsString       = "greater_equals_string_string"
	GreaterEqualsBytes        = "greater_equals_bytes_bytes"
	GreaterEqualsTimestamp    = "greater_equals_timestamp_timestamp"
	GreaterEqualsDuration     = "greater_equals_duration_duration"
)

// Indexing and membership.
const (
	IndexList    = "index_list"
	IndexMap     = "index_map"
	IndexMessage = "index_message"

	InList       = "in_list"
	InMap        = "in_map"
	InMessage    = "in_message"
	DeprecatedIn = "deprecated_in"
)

// Size.
const (
	Size           = "size"
	SizeBytes      = "size_bytes"
	SizeBytesInst  = "bytes_size"
	SizeList       = "size_list"
	SizeListInst   = "list_size"
	SizeMap        = "size_map"
	SizeMapInst    = "map_size"
	SizeString     = "size_string"
	SizeStringInst = "string_size"
)

// Type conversions.
const (
	TypeConvertType = "type_convert_type"

	TypeConvertBool = "type_convert_bool"
	BoolToBool      = "bool_to_bool"
	StringToBool    = "string_to_bool"

	TypeConvertBytes = "type_convert_bytes"
	BytesToBytes     = "bytes_to_bytes"
	StringToBytes    = "string_to_bytes"

	TypeConvertDouble = "type_convert_double"
	DoubleToDouble    = "double_to_double"
	IntToDouble       = "int64_to_double"
	StringToDouble    = "string_to_double"
	UintToDouble      = "uint64_to_double"

	TypeConvertDuration = "type_convert_duration"
	DurationToDuration  = "duration_to_duration"
	IntToDuration       = "int64_to_duration"
	StringToDuration    = "string_to_duration"

	TypeConvertDyn = "type_convert_dyn"
	ToDyn          = "to_dyn"

	TypeConvertInt = "type_convert_int"
	IntToInt       = "int64_to_int64"
	DoubleToInt    = "double_to_int64"
	DurationToInt  = "duration_to_int64"
	StringToInt    = "string_to_int64"
	TimestampToInt = "timestamp_to_int64"
	UintToInt      = "uint64_to_int64"

	TypeConvertString = "type_convert_string"
	StringToString    = "string_to_string"
	BoolToString      = "bool_to_string"
	BytesToString     = "bytes_to_string"
	DoubleToString    = "double_to_string"
	DurationToString  = "duration_to_string"
	IntToString       = "int64_to_string"
	TimestampToString = "timestamp_to_string"
	UintToString      = "uint64_to_string"

	TypeConvertTimestamp = "type_convert_timestamp"
	TimestampToTimestamp = "timestamp_to_timestamp"
	IntToTimestamp       = "int64_to_timestamp"
	StringToTimestamp    = "string_to_timestamp"

	TypeConvertUint = "type_convert_uint"
	UintToUint      = "uint64_to_uint64"
	DoubleToUint    = "double_to_uint64"
	IntToUint       = "int64_to_uint64"
	StringToUint    = "string_to_uint64"
)

// String functions.
const (
	Contains       = "contains"
	ContainsString = "contains_string"

	EndsWith       = "ends_with"
	EndsWithString = "ends_with_string"

	StartsWith       = "starts_with"
	StartsWithString = "starts_with_string"

	Matches       = "matches"
	MatchesString = "matches_string"
	MatchString   = "match_string"

	ExtFormatString = "ext_format_string"
	ExtQuoteString  = "ext_quote_string"
)

// Timestamp/duration component accessors, each with a plain and a
// timezone-qualified overload.
const (
	TimeGetFullYear   = "time_get_full_year"
	TimeGetMonth      = "time_get_month"
	TimeGetDayOfYear  = "time_get_day_of_year"
	TimeGetDayOfMonth = "time_get_day_of_month"
	TimeGetDate       = "time_get_date"
	TimeGetDayOfWeek  = "time_get_day_of_week"
	TimeGetHours      = "time_get_hours"
	TimeGetMinutes    = "time_get_minutes"
	TimeGetSeconds    = "time_get_seconds"

	TimestampToYear   = "timestamp_to_year"
	TimestampToYearWithTz = "timestamp_to_year_with_tz"

	TimestampToMonth       = "timestamp_to_month"
	TimestampToMonthWithTz = "timestamp_to_month_with_tz"

	TimestampToDayOfYear       = "timestamp_to_day_of_year"
	TimestampToDayOfYearWithTz = "timestamp_to_day_of_year_with_tz"

	TimestampToDayOfMonthZeroBased       = "timestamp_to_day_of_month_zero_based"
	TimestampToDayOfMonthZeroBasedWithTz = "timestamp_to_day_of_month_zero_based_with_tz"

	TimestampToDayOfMonthOneBased       = "timestamp_to_day_of_month_one_based"
	TimestampToDayOfMonthOneBasedWithTz = "timestamp_to_day_of_month_one_based_with_tz"

	TimestampToDayOfWeek       = "timestamp_to_day_of_week"
	TimestampToDayOfWeekWithTz = "timestamp_to_day_of_week_with_tz"

	TimestampToHours       = "timestamp_to_hours"
	TimestampToHoursWithTz = "timestamp_to_hours_with_tz"
	DurationToHours        = "duration_to_hours"

	TimestampToMinutes       = "timestamp_to_minutes"
	TimestampToMinutesWithTz = "timestamp_to_minutes_with_tz"
	DurationToMinutes        = "duration_to_minutes"

	TimestampToSeconds       = "timestamp_to_seconds"
	TimestampToSecondsWithTz = "timestamp_to_seconds_with_tz"
	DurationToSeconds        = "duration_to_seconds"

	TimeGetMilliseconds          = "time_get_milliseconds"
	TimestampToMilliseconds       = "timestamp_to_milliseconds"
	TimestampToMillisecondsWithTz = "timestamp_to_milliseconds_with_tz"
	DurationToMilliseconds        = "duration_to_milliseconds"
)

// Iteration protocol, used by the interpreter's comprehension loop.
const (
	Iterator = "iterator"
	HasNext  = "has_next"
	Next     = "next"
)

// Optional construction, used by struct/list/map literal's `?field:`
// entries and by the constant-folding optimizer's optional-propagation
// rule (spec §4.8).
const (
	OptionalOf            = "optional_of"
	OptionalNone          = "optional_none"
	OptionalOfNonZeroValue = "optional_ofNonZeroValue"
)
