package service

import (
	"gorm.io/gorm"

	"contract-risk-go/internal/model"
)

// 测试用的内存版仓储实现。

type fakeDocRepo struct {
	docs     []*model.Document
	rows     []model.DocumentWithRisk
	metadata map[uint]model.JSONMap
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{metadata: make(map[uint]model.JSONMap)}
}

func (f *fakeDocRepo) Create(doc *model.Document) error {
	doc.ID = uint(len(f.docs) + 1)
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeDocRepo) FindByID(id uint) (*model.Document, error) {
	for _, d := range f.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDocRepo) FindLatestByUserID(userID uint) (*model.Document, error) {
	for i := len(f.docs) - 1; i >= 0; i-- {
		if f.docs[i].UserID == userID {
			return f.docs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDocRepo) FindByUserID(uint) ([]model.DocumentWithRisk, error) {
	return f.rows, nil
}

func (f *fakeDocRepo) UpdateMetadata(docID uint, metadata model.JSONMap) error {
	f.metadata[docID] = metadata
	return nil
}

func (f *fakeDocRepo) FindBatchByIDs(ids []uint) ([]model.Document, error) {
	var result []model.Document
	for _, id := range ids {
		if doc, err := f.FindByID(id); err == nil {
			result = append(result, *doc)
		}
	}
	return result, nil
}

type fakeRiskRepo struct {
	records []model.RiskRecord
}

func (f *fakeRiskRepo) BatchCreate(records []model.RiskRecord) error {
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeRiskRepo) FindByDocumentID(documentID uint) ([]model.RiskRecord, error) {
	var result []model.RiskRecord
	for _, r := range f.records {
		if r.DocumentID == documentID {
			result = append(result, r)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	users []*model.User
}

func (f *fakeUserRepo) Create(user *model.User) error {
	user.ID = uint(len(f.users) + 1)
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(userID uint) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
