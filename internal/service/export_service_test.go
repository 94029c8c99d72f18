package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"bond-registry/internal/domain"
	repomocks "bond-registry/internal/repository/mocks"
	"bond-registry/internal/storage"
)

type fakeStorage struct {
	uploaded  []storage.Object
	bodies    []string
	uploadErr error
}

func (f *fakeStorage) Upload(_ context.Context, obj storage.Object) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	f.uploaded = append(f.uploaded, obj)
	f.bodies = append(f.bodies, string(body))
	return "s3://" + obj.Bucket + "/" + obj.Key, nil
}

func (f *fakeStorage) GetObjectURL(_ context.Context, bucket, key string, expires time.Duration) (string, error) {
	return "https://signed.example/" + bucket + "/" + key + "?expires=" + expires.String(), nil
}

func TestExportUploadsOwnersBonds(t *testing.T) {
	ctrl := gomock.NewController(t)
	bonds := repomocks.NewMockBondRepository(ctrl)
	owner := &domain.User{ID: 3, Username: "alice"}

	maturity := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
	bonds.EXPECT().Query(gomock.Any(), domain.BondFilter{}, int64(3)).Return([]domain.Bond{
		{ISIN: "FR0000131104", Size: 100, Currency: "EUR", Maturity: maturity, LEI: testLEI, LegalName: "MOCKBANK", OwnerID: 3, OwnerUsername: "alice"},
	}, nil)

	store := &fakeStorage{}
	svc := NewExportService(bonds, store, "exports", "/bond-exports/").(*exportService)
	svc.now = func() time.Time { return time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC) }

	export, err := svc.Export(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 1, export.Count)

	require.Len(t, store.uploaded, 1)
	obj := store.uploaded[0]
	assert.Equal(t, "exports", obj.Bucket)
	assert.True(t, strings.HasPrefix(obj.Key, "bond-exports/alice/20260102T030405Z-"), obj.Key)
	assert.True(t, strings.HasSuffix(obj.Key, ".json"))
	assert.Equal(t, "application/json", obj.ContentType)
	assert.Equal(t, "s3://exports/"+obj.Key, export.Location)
	assert.Contains(t, export.URL, obj.Key)

	var views []BondView
	require.NoError(t, json.Unmarshal([]byte(store.bodies[0]), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "alice", views[0].Owner)
	assert.Equal(t, "2025-02-28", views[0].Maturity)
}

func TestExportDisabledWithoutBucket(t *testing.T) {
	ctrl := gomock.NewController(t)
	bonds := repomocks.NewMockBondRepository(ctrl)

	_, err := NewExportService(bonds, &fakeStorage{}, "", "bond-exports").Export(context.Background(), &domain.User{ID: 1})
	require.ErrorIs(t, err, ErrExportDisabled)

	_, err = NewExportService(bonds, nil, "exports", "bond-exports").Export(context.Background(), &domain.User{ID: 1})
	require.ErrorIs(t, err, ErrExportDisabled)
}

func TestExportPropagatesUploadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	bonds := repomocks.NewMockBondRepository(ctrl)
	bonds.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return([]domain.Bond{}, nil)

	store := &fakeStorage{uploadErr: errors.New("access denied")}
	_, err := NewExportService(bonds, store, "exports", "bond-exports").Export(context.Background(), &domain.User{ID: 1, Username: "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
