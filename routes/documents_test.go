package routes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/nhs-staffing/controllers"
	"github.com/meinhoongagan/nhs-staffing/models"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

type memoryStore struct {
	folder   string
	filename string
	content  []byte
}

func (m *memoryStore) Upload(_ context.Context, file any, filename, folder string) (string, error) {
	r, ok := file.(io.Reader)
	if !ok {
		return "", fmt.Errorf("unexpected upload source %T", file)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.folder, m.filename, m.content = folder, filename, content
	return "https://files.test/" + folder + "/" + filename, nil
}

func configureFiles(t *testing.T, files utils.FileStore) {
	t.Helper()
	controllers.Configure(controllers.Options{JWTSecret: testSecret, AccessTTL: time.Hour, RefreshTTL: 2 * time.Hour, Files: files})
}

// agencyWithNurse registers an agency and one nurse, returning the agency token and nurse id.
func agencyWithNurse(t *testing.T, api *testAPI) (string, uint) {
	t.Helper()
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/auth/register/agency", "", fiber.Map{
		"email": "docs@agency.test", "password": "agency-pass", "name": "Paperwork Ltd",
	}, nil))
	token := api.login("docs@agency.test", "agency-pass")

	var nurse idOnly
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/agency/nurses", token, fiber.Map{
		"full_name": "Grace Mensah", "dob": "1988-11-20", "registration_number": "88B1234C",
	}, &nurse))
	return token, nurse.ID
}

func multipartDocument(t *testing.T, path, token string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadDocument_JSONFileURL(t *testing.T) {
	api := newTestAPI(t, nil)
	token, nurseID := agencyWithNurse(t, api)
	path := fmt.Sprintf("/agency/nurses/%d/documents", nurseID)
	expiry := models.Today().AddDate(0, 6, 0).Format("2006-01-02")

	var doc struct {
		ID      uint   `json:"id"`
		FileURL string `json:"file_url"`
	}
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, path, token, fiber.Map{
		"document_type": "dbs_check", "file_url": "https://files.test/dbs.pdf", "expiry_date": expiry,
	}, &doc))
	require.Equal(t, "https://files.test/dbs.pdf", doc.FileURL)

	require.Equal(t, http.StatusBadRequest, api.call(http.MethodPost, path, token, fiber.Map{
		"document_type": "dbs_check", "file_url": "https://files.test/old.pdf",
		"expiry_date": models.Today().Format("2006-01-02"),
	}, nil), "expiry today is rejected")

	var docs []idOnly
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, path, token, nil, &docs))
	require.Equal(t, []idOnly{{ID: doc.ID}}, docs)
}

func TestUploadDocument_Multipart(t *testing.T) {
	api := newTestAPI(t, nil)
	token, nurseID := agencyWithNurse(t, api)
	path := fmt.Sprintf("/agency/nurses/%d/documents", nurseID)
	fields := map[string]string{
		"document_type": "right_to_work",
		"expiry_date":   models.Today().AddDate(1, 0, 0).Format("2006-01-02"),
	}

	status, body := api.send(multipartDocument(t, path, token, fields, "passport.pdf", []byte("%PDF-1.7")))
	require.Equal(t, http.StatusServiceUnavailable, status, "%s", body)

	store := &memoryStore{}
	configureFiles(t, store)

	status, body = api.send(multipartDocument(t, path, token, fields, "passport.pdf", []byte("%PDF-1.7")))
	require.Equal(t, http.StatusCreated, status, "%s", body)
	require.Equal(t, fmt.Sprintf("nurse-%d", nurseID), store.folder)
	require.Equal(t, "passport.pdf", store.filename)
	require.Equal(t, []byte("%PDF-1.7"), store.content)
	require.Contains(t, string(body), `"file_url":"https://files.test/nurse-`)
}
