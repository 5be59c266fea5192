/*
 * Copyright 2026 The metaharbor Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package catalog

import "fmt"

// ErrServerUnavailable represents connection-level failures reaching the
// metadata store.
type ErrServerUnavailable struct {
	Msg string
	Err error
}

// ErrRequestFailed represents a non-2xx response from the metadata store.
type ErrRequestFailed struct {
	Method string
	Path   string
	Status int
	Body   string
}

// ErrInvalidRequest represents a request rejected before it was sent.
type ErrInvalidRequest struct {
	Msg string
	Err error
}

// ErrCancelled represents a request abandoned because its context ended.
type ErrCancelled struct {
	Msg string
	Err error
}

func (e *ErrServerUnavailable) Error() string {
	return fmt.Sprintf("metadata store unavailable: %s: %v", e.Msg, e.Err)
}

func (e *ErrServerUnavailable) Unwrap() error { return e.Err }

func (e *ErrRequestFailed) Error() string {
	return fmt.Sprintf("metadata store request failed: %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid metadata store request: %s: %v", e.Msg, e.Err)
}

func (e *ErrInvalidRequest) Unwrap() error { return e.Err }

func (e *ErrCancelled) Error() string {
	return fmt.Sprintf("metadata store request cancelled: %s: %v", e.Msg, e.Err)
}

func (e *ErrCancelled) Unwrap() error { return e.Err }
