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

package http

var (
	Failed                        = failed(500, "Request failed")
	RequestParameterParsingFailed = failed(5001, "Request parameter parsing failed")
	InternalError                 = failed(5000, "Internal error, please contact the administrator")
	CacheUnavailable              = failed(5030, "Settings cache unavailable")

	// BadRequest 400
	BadRequest          = failed(4000, "Bad request")
	InvalidOrganization = failed(4001, "Invalid organization id")
	UnknownNamespace    = failed(4002, "Unknown settings namespace")
	UnknownEntityKind   = failed(4003, "Unknown entity kind")
	InvalidRequest      = failed(4005, "Invalid settings request")

	NotFound             = failed(4004, "Not found")
	OrganizationNotFound = failed(4041, "Organization does not exist")
	EntityNotFound       = failed(4042, "Entity does not exist")

	// ValidationFailed 422
	ValidationFailed = failed(4220, "Settings validation failed")
)

var (
	Success = success(200, "Request Success")
)

func failed(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}

func success(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}
