/*
 * source.go, part of pwtraj.
 *
 * Copyright 2024 The pwtraj authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package source opens pw.x files wherever they are: local paths, the standard
//input ("-") or S3 objects ("s3://bucket/key"). Files ending in .zst, .zstd or .gz
//are decompressed on the fly.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

//ObjectGetter is the part of the S3 client used to fetch objects.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

//S3 contains the settings for S3 (or S3-compatible) storage.
type S3 struct {
	Region    string
	Endpoint  string //empty for AWS
	PathStyle bool   //needed by MinIO and friends
	AccessKey string //if empty, the default AWS credential chain is used
	SecretKey string
}

type options struct {
	s3     S3
	client ObjectGetter
	stdin  io.Reader
	logger *zap.Logger
}

//Option sets an optional parameter of Open.
type Option func(*options)

//WithS3 sets the S3 settings used for s3:// URIs.
func WithS3(s S3) Option {
	return func(o *options) { o.s3 = s }
}

//WithS3Client makes Open use the given client for s3:// URIs, instead of building one.
func WithS3Client(c ObjectGetter) Option {
	return func(o *options) { o.client = c }
}

//WithStdin sets the reader used for "-". The default is os.Stdin.
func WithStdin(r io.Reader) Option {
	return func(o *options) { o.stdin = r }
}

//WithLogger sets the logger for Open.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

//ParseS3URI splits an URI of the form s3://bucket/key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("source: %q is not an s3:// URI", uri)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("source: %q needs both a bucket and a key", uri)
	}
	return bucket, key, nil
}

//Open returns a reader for the file at uri, decompressed if its name asks for it.
//The caller must close it.
func Open(ctx context.Context, uri string, opts ...Option) (io.ReadCloser, error) {
	o := &options{stdin: os.Stdin, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	var raw io.ReadCloser
	name := uri
	switch {
	case uri == "-":
		raw = io.NopCloser(o.stdin)
	case strings.HasPrefix(uri, "s3://"):
		bucket, key, err := ParseS3URI(uri)
		if err != nil {
			return nil, err
		}
		client := o.client
		if client == nil {
			if client, err = NewS3Client(ctx, o.s3); err != nil {
				return nil, err
			}
		}
		o.logger.Debug("fetching object", zap.String("bucket", bucket), zap.String("key", key))
		out, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("source: getting %s: %w", uri, err)
		}
		raw = out.Body
		name = key
	default:
		f, err := os.Open(uri)
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		raw = f
	}
	r, err := Decompress(name, raw)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return r, nil
}

//NewS3Client builds an S3 client from the settings. Without a region, us-east-1 is used.
func NewS3Client(ctx context.Context, s S3) (*s3.Client, error) {
	region := s.Region
	if region == "" {
		region = "us-east-1"
	}
	loaders := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if s.AccessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("source: loading AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
		o.UsePathStyle = s.PathStyle
	}), nil
}

//Compressed returns true if the name of the file indicates that it is compressed.
func Compressed(name string) bool {
	return codec(name) != ""
}

func codec(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return "zstd"
	case strings.HasSuffix(name, ".gz"):
		return "gzip"
	}
	return ""
}

//TrimCompression removes the compression suffix from name, if any, so
//"relax.pwo.gz" gives "relax.pwo".
func TrimCompression(name string) string {
	if !Compressed(name) {
		return name
	}
	return name[:strings.LastIndex(name, ".")]
}

//*zstd.Decoder's Close doesn't return an error, so it is not an io.ReadCloser.
type zstdCloser struct {
	*zstd.Decoder
	under io.Closer
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return z.under.Close()
}

type gzipCloser struct {
	*gzip.Reader
	under io.Closer
}

func (g gzipCloser) Close() error {
	err := g.Reader.Close()
	if err2 := g.under.Close(); err == nil {
		err = err2
	}
	return err
}

//Decompress wraps r in a decompressor chosen from the suffix of name. Closing the
//returned reader closes r too.
func Decompress(name string, r io.ReadCloser) (io.ReadCloser, error) {
	switch codec(name) {
	case "zstd":
		d, err := zstd.NewReader(bufio.NewReader(r))
		if err != nil {
			return nil, fmt.Errorf("source: zstd stream %s: %w", name, err)
		}
		return zstdCloser{d, r}, nil
	case "gzip":
		g, err := gzip.NewReader(bufio.NewReader(r))
		if err != nil {
			return nil, fmt.Errorf("source: gzip stream %s: %w", name, err)
		}
		return gzipCloser{g, r}, nil
	}
	return r, nil
}
