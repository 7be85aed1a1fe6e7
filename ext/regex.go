// Copyright 2025 Google LLC
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
	"regexp"
	"strconv"
	"strings"

	"github.com/exprcel/cel/cel"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

// Regex returns a cel.EnvOption configuring regular-expression helper
// functions: regex.capture, regex.captureAll, regex.captureAllNamed, and
// regex.replace.
//
//	regex.capture(<string>, <string>) -> optional<string>
//	regex.captureAll(<string>, <string>) -> list<string>
//	regex.captureAllNamed(<string>, <string>) -> map<string, string>
//	regex.replace(<string>, <string>, <string>) -> <string>
//	regex.replace(<string>, <string>, <string>, <int>) -> <string>
func Regex() cel.EnvOption {
	return cel.Lib(regexLib{})
}

type regexLib struct{}

func (regexLib) LibraryName() string { return "cel.lib.ext.regex" }

func (regexLib) CompileOptions() []cel.EnvOption {
	optionalString := cel.OptionalType(cel.StringType)
	listOfString := cel.ListType(cel.StringType)
	mapStringString := cel.MapType(cel.StringType, cel.StringType)
	return []cel.EnvOption{
		cel.Function("regex.capture",
			cel.Overload("regex_capture_string_string", []*types.Type{cel.StringType, cel.StringType}, optionalString,
				cel.BinaryBinding(regexCaptureFirst))),
		cel.Function("regex.captureAll",
			cel.Overload("regex_captureAll_string_string", []*types.Type{cel.StringType, cel.StringType}, listOfString,
				cel.BinaryBinding(regexCaptureAll))),
		cel.Function("regex.captureAllNamed",
			cel.Overload("regex_captureAllNamed_string_string", []*types.Type{cel.StringType, cel.StringType}, mapStringString,
				cel.BinaryBinding(regexCaptureAllNamed))),
		cel.Function("regex.replace",
			cel.Overload("regex_replace_string_string_string",
				[]*types.Type{cel.StringType, cel.StringType, cel.StringType}, cel.StringType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return regexReplace(string(args[0].(types.String)), string(args[1].(types.String)), string(args[2].(types.String)), -1)
				})),
			cel.Overload("regex_replace_string_string_string_int",
				[]*types.Type{cel.StringType, cel.StringType, cel.StringType, cel.IntType}, cel.StringType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return regexReplace(string(args[0].(types.String)), string(args[1].(types.String)), string(args[2].(types.String)), int64(args[3].(types.Int)))
				}))),
	}
}

func (regexLib) ProgramOptions() []cel.ProgramOption { return nil }

var (
	reGroupNum     = regexp.MustCompile(`\$(\d+)`)
	reGroupName    = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)
	reGroupInvalid = regexp.MustCompile(`\$[a-zA-Z_][a-zA-Z0-9_]*`)
)

func compileRegex(pattern string) (*regexp.Regexp, ref.Val) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, types.NewErrKind(types.ErrInvalidArgument, "invalid regex: %v", err)
	}
	return re, nil
}

func validateReplacement(re *regexp.Regexp, replacement string) ref.Val {
	if !strings.Contains(replacement, "$") {
		return nil
	}
	groupNames := re.SubexpNames()
	groupCount := len(groupNames) - 1
	for _, m := range reGroupNum.FindAllStringSubmatch(replacement, -1) {
		idx, _ := strconv.Atoi(m[1])
		if idx < 0 || idx > groupCount {
			return types.NewErrKind(types.ErrInvalidArgument, "replacement references group $%d, but regex has only %d group(s)", idx, groupCount)
		}
	}
	if strings.Contains(replacement, "${") {
		valid := make(map[string]struct{})
		for _, name := range groupNames {
			if name != "" {
				valid[name] = struct{}{}
			}
		}
		for _, m := range reGroupName.FindAllStringSubmatch(replacement, -1) {
			if _, ok := valid[m[1]]; !ok {
				return types.NewErrKind(types.ErrInvalidArgument, "invalid capture group name in replacement: %s", m[1])
			}
		}
	}
	for _, m := range reGroupInvalid.FindAllString(replacement, -1) {
		if !reGroupNum.MatchString(m) {
			return types.NewErrKind(types.ErrInvalidArgument, "invalid group reference: %s", m)
		}
	}
	return nil
}

func regexCaptureFirst(targetVal, patternVal ref.Val) ref.Val {
	re, errVal := compileRegex(string(patternVal.(types.String)))
	if errVal != nil {
		return errVal
	}
	matches := re.FindStringSubmatch(string(targetVal.(types.String)))
	if len(matches) == 0 {
		return types.OptionalNone
	}
	if len(matches) > 1 {
		if matches[1] == "" {
			return types.OptionalNone
		}
		return types.NewOptional(types.String(matches[1]))
	}
	return types.NewOptional(types.String(matches[0]))
}

func regexCaptureAll(targetVal, patternVal ref.Val) ref.Val {
	re, errVal := compileRegex(string(patternVal.(types.String)))
	if errVal != nil {
		return errVal
	}
	matches := re.FindAllStringSubmatch(string(targetVal.(types.String)), -1)
	var result []ref.Val
	if len(matches) == 0 {
		return types.NewList(result)
	}
	hasGroups := len(matches[0]) > 1
	for _, match := range matches {
		if hasGroups {
			for i := 1; i < len(match); i++ {
				if match[i] != "" {
					result = append(result, types.String(match[i]))
				}
			}
		} else {
			result = append(result, types.String(match[0]))
		}
	}
	return types.NewList(result)
}

func regexCaptureAllNamed(targetVal, patternVal ref.Val) ref.Val {
	re, errVal := compileRegex(string(patternVal.(types.String)))
	if errVal != nil {
		return errVal
	}
	matches := re.FindAllStringSubmatch(string(targetVal.(types.String)), -1)
	result := types.NewMap()
	groupNames := re.SubexpNames()
	for _, match := range matches {
		for i, name := range groupNames {
			if i < len(match) && name != "" {
				if err := result.Insert(types.String(name), types.String(match[i])); err != nil {
					return types.NewErrKind(types.ErrInvalidArgument, "%s", err.Error())
				}
			}
		}
	}
	return result
}

func regexReplace(target, pattern, replacement string, count int64) ref.Val {
	re, errVal := compileRegex(pattern)
	if errVal != nil {
		return errVal
	}
	if errVal := validateReplacement(re, replacement); errVal != nil {
		return errVal
	}
	if count < 0 {
		return types.String(re.ReplaceAllString(target, replacement))
	}
	remaining := count
	out := re.ReplaceAllStringFunc(target, func(match string) string {
		if remaining <= 0 {
			return match
		}
		remaining--
		groups := re.FindStringSubmatchIndex(match)
		return string(re.ExpandString(nil, replacement, match, groups))
	})
	return types.String(out)
}
