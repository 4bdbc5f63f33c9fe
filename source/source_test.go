/*
 * source_test.go, part of pwtraj.
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

package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const content = "     Program PWSCF v.7.2 starts on\n     JOB DONE.\n"

func readAll(t *testing.T, uri string, opts ...Option) string {
	t.Helper()
	r, err := Open(context.Background(), uri, opts...)
	require.NoError(t, err)
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestOpenLocal(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "relax.pwo")
	require.NoError(t, os.WriteFile(plain, []byte(content), 0o644))
	assert.Equal(t, content, readAll(t, plain))

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err := w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	gzname := filepath.Join(dir, "relax.pwo.gz")
	require.NoError(t, os.WriteFile(gzname, gz.Bytes(), 0o644))
	assert.Equal(t, content, readAll(t, gzname))

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	require.NoError(t, err)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	zsname := filepath.Join(dir, "relax.pwo.ZST")
	require.NoError(t, os.WriteFile(zsname, zs.Bytes(), 0o644))
	assert.Equal(t, content, readAll(t, zsname))

	_, err = Open(context.Background(), filepath.Join(dir, "missing.pwo"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.pwo.gz")
	require.NoError(t, os.WriteFile(bad, []byte(content), 0o644))
	_, err = Open(context.Background(), bad)
	assert.Error(t, err)
}

func TestOpenStdin(t *testing.T) {
	assert.Equal(t, content, readAll(t, "-", WithStdin(strings.NewReader(content))))
}

type fakeS3 struct {
	objects map[string]string
	asked   []string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	k := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.asked = append(f.asked, k)
	c, ok := f.objects[k]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(c))}, nil
}

func TestOpenS3(t *testing.T) {
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, _ = w.Write([]byte(content))
	require.NoError(t, w.Close())
	f := &fakeS3{objects: map[string]string{
		"runs/feo/relax.pwo":    content,
		"runs/feo/relax.pwo.gz": gz.String(),
	}}
	assert.Equal(t, content, readAll(t, "s3://runs/feo/relax.pwo", WithS3Client(f)))
	assert.Equal(t, content, readAll(t, "s3://runs/feo/relax.pwo.gz", WithS3Client(f)))
	_, err := Open(context.Background(), "s3://runs/nothing.pwo", WithS3Client(f))
	assert.ErrorContains(t, err, "NoSuchKey")
	assert.Equal(t, []string{"runs/feo/relax.pwo", "runs/feo/relax.pwo.gz", "runs/nothing.pwo"}, f.asked)
}

func TestParseS3URI(t *testing.T) {
	b, k, err := ParseS3URI("s3://bucket/dir/file.pwo")
	require.NoError(t, err)
	assert.Equal(t, "bucket", b)
	assert.Equal(t, "dir/file.pwo", k)
	for _, bad := range []string{"bucket/key", "s3://bucket", "s3:///key"} {
		_, _, err := ParseS3URI(bad)
		assert.Error(t, err, bad)
	}
}

func TestCompressionNames(t *testing.T) {
	assert.True(t, Compressed("a.pwo.zstd"))
	assert.False(t, Compressed("a.pwo"))
	assert.Equal(t, "relax.pwo", TrimCompression("relax.pwo.gz"))
	assert.Equal(t, "relax.pwo", TrimCompression("relax.pwo"))
}
