// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package pipeline implements the incremental sync of the Zoho CRM modules.
// A run resolves the module catalog, then drains one stream at a time, emitting every record
// to the sink and saving the stream bookmark after each emitted record, so that an interrupted
// run resumes after the last delivered record.
package pipeline
