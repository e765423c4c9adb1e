// Copyright 2023 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

// Package azblob implements the payload store on Azure Blob Storage.
package azblob

import (
	"bytes"
	"context"
	"errors"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/mendersoftware/operations/storage"
)

var ErrNoCredentials = errors.New("azblob: no connection string or shared key configured")

// PayloadStore keeps payloads as block blobs in a single container.
type PayloadStore struct {
	container   *container.Client
	contentType *string
}

var _ storage.PayloadStore = (*PayloadStore)(nil)

func clientOptions() *container.ClientOptions {
	return &container.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: storage.NewHTTPClient(),
		},
	}
}

// New connects to the container, creating it when missing.
func New(ctx context.Context, containerName string, opts ...*Options) (*PayloadStore, error) {
	var (
		err error
		cc  *container.Client
	)
	opt := NewOptions(opts...)
	switch {
	case opt.ConnectionString != nil:
		cc, err = container.NewClientFromConnectionString(
			*opt.ConnectionString, containerName, clientOptions(),
		)
	case opt.SharedKey != nil:
		containerURL, azCred, errCred := opt.SharedKey.azParams(containerName)
		if errCred != nil {
			return nil, OpError{Op: OpInit, Reason: errCred}
		}
		cc, err = container.NewClientWithSharedKeyCredential(
			containerURL, azCred, clientOptions(),
		)
	default:
		err = ErrNoCredentials
	}
	if err != nil {
		return nil, OpError{Op: OpInit, Message: "failed to initialize client", Reason: err}
	}
	ps := NewWithClient(cc, opt)
	if err := ps.init(ctx); err != nil {
		return nil, err
	}
	return ps, nil
}

// NewWithClient wraps an existing container client.
func NewWithClient(cc *container.Client, opts ...*Options) *PayloadStore {
	opt := NewOptions(opts...)
	return &PayloadStore{
		container:   cc,
		contentType: opt.ContentType,
	}
}

func (c *PayloadStore) init(ctx context.Context) error {
	_, err := c.container.Create(ctx, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return OpError{
			Op:      OpInit,
			Message: "failed to create container",
			Reason:  err,
		}
	}
	return nil
}

func (c *PayloadStore) HealthCheck(ctx context.Context) error {
	_, err := c.container.GetProperties(ctx, nil)
	if err != nil {
		return OpError{
			Op:     OpHealthCheck,
			Reason: err,
		}
	}
	return nil
}

func (c *PayloadStore) Store(ctx context.Context, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", storage.ErrEmptyPayload
	}
	handle := storage.NewHandle()
	bc := c.container.NewBlockBlobClient(storage.ObjectPath(ctx, handle))
	_, err := bc.UploadBuffer(ctx, payload, &blockblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: c.contentType,
		},
	})
	if err != nil {
		return "", OpError{
			Op:      OpStore,
			Message: "failed to upload payload",
			Reason:  err,
		}
	}
	return handle, nil
}

func (c *PayloadStore) Load(ctx context.Context, handle string) ([]byte, error) {
	bc := c.container.NewBlobClient(storage.ObjectPath(ctx, handle))
	rsp, err := bc.DownloadStream(ctx, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		err = storage.ErrObjectNotFound
	}
	if err != nil {
		return nil, OpError{
			Op:      OpLoad,
			Message: "failed to download payload",
			Reason:  err,
		}
	}
	defer rsp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rsp.Body); err != nil {
		return nil, OpError{
			Op:      OpLoad,
			Message: "failed to read payload",
			Reason:  err,
		}
	}
	return buf.Bytes(), nil
}

func (c *PayloadStore) Delete(ctx context.Context, handle string) error {
	bc := c.container.NewBlobClient(storage.ObjectPath(ctx, handle))
	_, err := bc.Delete(ctx, &blob.DeleteOptions{
		DeleteSnapshots: to.Ptr(blob.DeleteSnapshotsOptionTypeInclude),
	})
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		err = storage.ErrObjectNotFound
	}
	if err != nil {
		return OpError{
			Op:      OpDelete,
			Message: "failed to delete payload",
			Reason:  err,
		}
	}
	return nil
}
