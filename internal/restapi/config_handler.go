package restapi

import (
	"net/http"

	"bharatbus.in/internal/buildinfo"
	"bharatbus.in/internal/models"
)

func (api *RestAPI) configHandler(w http.ResponseWriter, r *http.Request) {
	gitProps := models.GitProperties{
		GitBranch:                buildinfo.Branch,
		GitBuildTime:             buildinfo.BuildTime,
		GitBuildVersion:          buildinfo.Version,
		GitCommitId:              buildinfo.CommitHash,
		GitCommitTime:            buildinfo.CommitTime,
		GitDirty:                 buildinfo.Dirty,
		GitCommitIdAbbrev:        buildinfo.ShortCommitHash(),
		GitBuildHost:             buildinfo.Host,
		GitBuildUserEmail:        buildinfo.UserEmail,
		GitBuildUserName:         buildinfo.UserName,
		GitCommitUserEmail:       buildinfo.UserEmail,
		GitCommitUserName:        buildinfo.UserName,
		GitRemoteOriginUrl:       buildinfo.RemoteURL,
		GitCommitMessageShort:    buildinfo.CommitMessage,
		GitCommitMessageFull:     buildinfo.CommitMessage,
		GitCommitIdDescribe:      buildinfo.Version,
		GitCommitIdDescribeShort: buildinfo.Version,
	}

	snapshot := api.Catalog.Snapshot()
	configEntry := models.ConfigModel{
		GitProperties:   gitProps,
		Id:              "bharatbus",
		Name:            "BharatBus",
		CatalogSource:   snapshot.Source,
		CatalogRoutes:   snapshot.Len(),
		CatalogLoadedAt: snapshot.LoadedAt.UnixMilli(),
	}

	response := models.NewEntryResponse(configEntry, models.NewEmptyReferences(), api.Clock)
	api.sendResponse(w, r, response)
}
