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

package s3

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mendersoftware/operations/storage"
)

const DefaultContentType = "application/octet-stream"

type Options struct {
	// StaticCredentials that overrides AWS config.
	StaticCredentials *StaticCredentials `json:"auth"`

	// Region where the bucket lives
	Region *string
	// ContentType of the uploaded payloads
	ContentType *string
	// URI is the URI for the s3 API.
	URI *string

	// ForcePathStyle encodes bucket in the API path.
	ForcePathStyle bool
	// UseAccelerate enables s3 Accelerate
	UseAccelerate bool
}

func NewOptions(opts ...*Options) *Options {
	contentType := DefaultContentType
	ret := &Options{
		ContentType: &contentType,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.StaticCredentials != nil {
			ret.StaticCredentials = opt.StaticCredentials
		}
		if opt.Region != nil {
			ret.Region = opt.Region
		}
		if opt.ContentType != nil {
			ret.ContentType = opt.ContentType
		}
		if opt.URI != nil {
			ret.URI = opt.URI
		}
		if opt.ForcePathStyle {
			ret.ForcePathStyle = true
		}
		if opt.UseAccelerate {
			ret.UseAccelerate = true
		}
	}
	return ret
}

func (opts Options) Validate() error {
	return validation.ValidateStruct(&opts,
		validation.Field(&opts.StaticCredentials),
	)
}

func (opts *Options) SetStaticCredentials(key, secret, sessionToken string) *Options {
	opts.StaticCredentials = &StaticCredentials{
		Key:    key,
		Secret: secret,
		Token:  sessionToken,
	}
	return opts
}

func (opts *Options) SetRegion(region string) *Options {
	opts.Region = &region
	return opts
}

func (opts *Options) SetContentType(contentType string) *Options {
	opts.ContentType = &contentType
	return opts
}

func (opts *Options) SetURI(uri string) *Options {
	opts.URI = &uri
	return opts
}

func (opts *Options) SetForcePathStyle(forcePathStyle bool) *Options {
	opts.ForcePathStyle = forcePathStyle
	return opts
}

func (opts *Options) SetUseAccelerate(useAccelerate bool) *Options {
	opts.UseAccelerate = useAccelerate
	return opts
}

func (opts *Options) clientOptions() func(*s3.Options) {
	return func(s3Opts *s3.Options) {
		if opts.StaticCredentials != nil {
			s3Opts.Credentials = *opts.StaticCredentials
		}
		if opts.Region != nil {
			s3Opts.Region = *opts.Region
		}
		if opts.URI != nil {
			s3Opts.EndpointResolver = s3.EndpointResolverFromURL(*opts.URI,
				func(ep *aws.Endpoint) {
					ep.HostnameImmutable = true
				},
			)
		}
		s3Opts.UsePathStyle = opts.ForcePathStyle
		s3Opts.UseAccelerate = opts.UseAccelerate
		s3Opts.HTTPClient = storage.NewHTTPClient()
	}
}
