package blobstore

import (
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

// signAccountReadSAS подписывает SAS аккаунта: чтение, тип ресурса object, blob сервис
func signAccountReadSAS(credential *azblob.SharedKeyCredential, expiry time.Time) (string, error) {
	if credential == nil {
		return "", ErrNoSharedKey
	}

	permissions := sas.AccountPermissions{Read: true}
	resourceTypes := sas.AccountResourceTypes{Object: true}

	values := sas.AccountSignatureValues{
		Protocol:      sas.ProtocolHTTPSandHTTP,
		ExpiryTime:    expiry.UTC(),
		Permissions:   permissions.String(),
		ResourceTypes: resourceTypes.String(),
	}
	query, err := values.SignWithSharedKey(credential)
	if err != nil {
		return "", fmt.Errorf("sign account SAS: %w", err)
	}
	return query.Encode(), nil
}
