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

// Package s3 implements the payload store on AWS S3 and compatible
// services.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsHttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"

	"github.com/mendersoftware/operations/storage"
)

type StaticCredentials struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
	Token  string `json:"token"`
}

func (creds StaticCredentials) Validate() error {
	return validation.ValidateStruct(&creds,
		validation.Field(&creds.Key, validation.Required),
		validation.Field(&creds.Secret, validation.Required),
	)
}

func (creds StaticCredentials) Retrieve(context.Context) (aws.Credentials, error) {
	return aws.Credentials{
		AccessKeyID:     creds.Key,
		SecretAccessKey: creds.Secret,
		SessionToken:    creds.Token,
		Source:          "operations:StaticCredentials",
	}, nil
}

// PayloadStore keeps payloads as objects in a single bucket.
type PayloadStore struct {
	client      *s3.Client
	bucket      string
	contentType *string
}

var _ storage.PayloadStore = (*PayloadStore)(nil)

// New creates the store and the bucket if it does not exist.
func New(ctx context.Context, bucket string, opts ...*Options) (*PayloadStore, error) {
	opt := NewOptions(opts...)
	if err := opt.Validate(); err != nil {
		return nil, errors.WithMessage(err, "s3: invalid configuration")
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	ps := &PayloadStore{
		client:      s3.NewFromConfig(cfg, opt.clientOptions()),
		bucket:      bucket,
		contentType: opt.ContentType,
	}
	if err := ps.init(ctx); err != nil {
		return nil, errors.WithMessage(err, "s3: failed to check bucket preconditions")
	}
	return ps, nil
}

func (s *PayloadStore) init(ctx context.Context) error {
	var rspErr *awsHttp.ResponseError

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	} else if errors.As(err, &rspErr) {
		switch rspErr.Response.StatusCode {
		case http.StatusNotFound:
			err = nil
		case http.StatusForbidden:
			err = fmt.Errorf(
				"s3: insufficient permissions for accessing bucket '%s'",
				s.bucket,
			)
		}
	}
	if err != nil {
		return err
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if !errors.As(err, &owned) {
			return errors.WithMessage(err, "s3: error creating bucket")
		}
	}
	waitTime := 30 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		waitTime = time.Until(deadline)
	}
	return s3.NewBucketExistsWaiter(s.client).
		Wait(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}, waitTime)
}

func (s *PayloadStore) HealthCheck(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	return err
}

func (s *PayloadStore) Store(ctx context.Context, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", storage.ErrEmptyPayload
	}
	handle := storage.NewHandle()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(storage.ObjectPath(ctx, handle)),
		Body:        bytes.NewReader(payload),
		ContentType: s.contentType,
	})
	if err != nil {
		return "", errors.WithMessage(err, "s3: error uploading payload")
	}
	return handle, nil
}

func (s *PayloadStore) Load(ctx context.Context, handle string) ([]byte, error) {
	rsp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storage.ObjectPath(ctx, handle)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, storage.ErrObjectNotFound
		}
		return nil, errors.WithMessage(err, "s3: error downloading payload")
	}
	defer rsp.Body.Close()
	payload, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, errors.WithMessage(err, "s3: error reading payload")
	}
	return payload, nil
}

// Delete removes the payload. Noop if the handle does not exist.
func (s *PayloadStore) Delete(ctx context.Context, handle string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storage.ObjectPath(ctx, handle)),
	})
	if err != nil {
		return errors.WithMessage(err, "s3: error deleting payload")
	}
	return nil
}
