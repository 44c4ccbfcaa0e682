// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package writer implements a sink writing Singer RECORD messages, one JSON document per
// line, to an io.Writer. It is the default sink, writing to the standard output.
package writer
