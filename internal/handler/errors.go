// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

// ErrNoHandlersAreCreated is returned by NewHandlers when no control API
// address is configured. The daemon then runs without a local API.
var ErrNoHandlersAreCreated = errors.New("no handlers are created")
