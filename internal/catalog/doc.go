// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package catalog describes the Zoho CRM modules that can be synced and resolves them against
// the modules defined in the connected organization.
package catalog
