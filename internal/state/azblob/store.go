// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package azblob stores the sync state as a JSON blob in an Azure Storage container.
package azblob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/mia-platform/zohosync/internal/state"
)

var _ state.Store = &Store{}

// Config selects the storage account, container and blob holding the state.
// ConnectionString takes precedence over AccountName, which is used with the default
// Azure credential chain.
type Config struct {
	ConnectionString string
	AccountName      string
	ContainerName    string
	BlobName         string
}

func (c Config) serviceURL() string {
	if strings.Contains(c.AccountName, ".blob.core.windows.net") {
		return c.AccountName
	}

	return fmt.Sprintf("https://%s.blob.core.windows.net/", c.AccountName)
}

func (c Config) newClient() (*azblob.Client, error) {
	if c.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(c.ConnectionString, nil)
	}

	credentials, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return c.newClientWithCredentials(credentials)
}

func (c Config) newClientWithCredentials(credentials azcore.TokenCredential) (*azblob.Client, error) {
	return azblob.NewClient(c.serviceURL(), credentials, nil)
}

// Store reads and overwrites a single blob.
type Store struct {
	client        *azblob.Client
	containerName string
	blobName      string
}

// New returns a Store using the account described by cfg.
func New(cfg Config) (*Store, error) {
	client, err := cfg.newClient()
	if err != nil {
		return nil, fmt.Errorf("state: azure blob client: %w", err)
	}

	return &Store{
		client:        client,
		containerName: cfg.ContainerName,
		blobName:      cfg.BlobName,
	}, nil
}

func (s *Store) Load(ctx context.Context) (*state.SyncState, error) {
	response, err := s.client.DownloadStream(ctx, s.containerName, s.blobName, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return state.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: downloading %s/%s: %w", s.containerName, s.blobName, err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("state: downloading %s/%s: %w", s.containerName, s.blobName, err)
	}
	return state.Unmarshal(data)
}

func (s *Store) Save(ctx context.Context, syncState *state.SyncState) error {
	data, err := syncState.Marshal()
	if err != nil {
		return fmt.Errorf("state: encoding: %w", err)
	}

	if _, err := s.client.UploadBuffer(ctx, s.containerName, s.blobName, data, nil); err != nil {
		return fmt.Errorf("state: uploading %s/%s: %w", s.containerName, s.blobName, err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
